package category

type Entry struct {
	Name          string   `json:"name"`
	Subcategories []string `json:"subcategories"`
	Active        bool     `json:"active"`
	Expanded      bool     `json:"expanded"`
}

type Menu struct {
	categories    []string
	subcategories map[string][]string
}

func NewMenu(categories []string, subcategories map[string][]string) Menu {
	return Menu{categories: categories, subcategories: subcategories}
}

// DefaultMenu is the storefront sidebar.
func DefaultMenu() Menu {
	return NewMenu(
		[]string{
			"jewelery",
			"electronics",
			"women's clothing",
			"men's clothing",
			"Эрүүл мэнд",
			"Согтууруулах ундаа",
			"Хоол",
			"Эх хүүхэд",
			"Цэвэрлэгээ",
			"Бэлдэц",
			"Цэцэг",
			"Амттан",
		},
		map[string][]string{
			"Хоол": {"electronics"},
		},
	)
}

// Entries lists the menu in order; only the active entry with
// subcategories is expanded.
func (m Menu) Entries(active *string) []Entry {
	entries := make([]Entry, 0, len(m.categories))
	for _, name := range m.categories {
		isActive := active != nil && *active == name
		subs := m.subcategories[name]
		if subs == nil {
			subs = []string{}
		}
		entries = append(entries, Entry{
			Name:          name,
			Subcategories: subs,
			Active:        isActive,
			Expanded:      isActive && len(subs) > 0,
		})
	}
	return entries
}

func (m Menu) Contains(name string) bool {
	for _, c := range m.categories {
		if c == name {
			return true
		}
	}
	return false
}

// IsSubcategory reports whether name is listed under parent.
func (m Menu) IsSubcategory(parent string, name string) bool {
	for _, sub := range m.subcategories[parent] {
		if sub == name {
			return true
		}
	}
	return false
}
