package types

// Filters captures the last-used catalog filter state.
type Filters struct {
	SearchTerm       string `json:"search_term"`
	SelectedCategory string `json:"selected_category"`
	SortBy           string `json:"sort_by"`
}

// DefaultFilters mirrors the filter state of a fresh session.
func DefaultFilters() Filters {
	return Filters{SortBy: "name"}
}

// Preferences are cosmetic settings persisted alongside the quote data.
type Preferences struct {
	ShowWelcomeMessage bool   `json:"show_welcome_message"`
	AutoSaveEnabled    bool   `json:"auto_save_enabled"`
	DefaultPricingMode string `json:"default_pricing_mode"`
	DefaultMargin      string `json:"default_margin"`
	CompanyName        string `json:"company_name"`
	CompanyPhone       string `json:"company_phone"`
	CompanyEmail       string `json:"company_email"`
}

// DefaultPreferences mirrors the first-run preference values.
func DefaultPreferences() Preferences {
	return Preferences{
		ShowWelcomeMessage: true,
		AutoSaveEnabled:    true,
		DefaultPricingMode: "margin",
	}
}
