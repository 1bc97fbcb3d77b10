package persistence

// Logical storage keys. Driver-level namespacing happens below this layer.
const (
	keyTheme          = "theme"
	keySavedQuotes    = "saved_quotes"
	keyCurrentQuote   = "current_quote"
	keyFilters        = "filters"
	keyViewMode       = "view_mode"
	keyRecentSearches = "recent_searches"
	keyPreferences    = "preferences"
	keyQuoteHistory   = "quote_history"
)
