package service

// Persisted storage keys. Each namespace owns a disjoint key and never
// touches another namespace's key.
const (
	keyAuthToken      = "auth_token"
	keyUserInfo       = "user_info"
	keyCart           = "shopping_cart"
	keyFavorites      = "favorites" // suffixed with ":<userID>"
	keyRecentSearches = "recent_searches"
	keyTheme          = "theme_mode"
)
