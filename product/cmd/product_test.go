package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/product/internal/repository"
)

func TestNewCatalogSource(t *testing.T) {
	tests := []struct {
		name   string
		source string
		err    error
	}{
		{name: "given fakestore should build http source", source: repository.SourceFakeStore},
		{name: "given unknown source should fail", source: "mongodb", err: commonErrors.ErrUnknownSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Config{Catalog: config.Catalog{
				Source:  tt.source,
				BaseURL: "https://fakestoreapi.com",
				Timeout: time.Second,
			}}
			source, closeAll, err := NewCatalogSource(context.Background(), cfg)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Nil(t, source)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, repository.FakeStoreSource{}, source)
			closeAll()
		})
	}
}
