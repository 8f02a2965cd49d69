package mockapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/niksmo/storefront/internal/core/domain"
)

const (
	defaultPageLimit = 12
	maxPageLimit     = 100
)

func (a *API) listProducts(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	categoryID := queryInt(c, "category", 0)
	sortBy := c.Query("sortBy")

	a.store.mu.Lock()
	products := append([]domain.Product(nil), a.store.products...)
	a.store.mu.Unlock()

	if categoryID != 0 {
		filtered := products[:0]
		for _, p := range products {
			if p.CategoryID == categoryID {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}

	products = sortProducts(products, sortBy)

	total := len(products)
	pages := (total + limit - 1) / limit
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, gin.H{
		"data": products[start:end],
		"pagination": gin.H{
			"page": page, "limit": limit, "total": total, "pages": pages,
		},
	})
}

func (a *API) getProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid product id")
		return
	}

	a.store.mu.Lock()
	p, ok := a.store.productByID(id)
	a.store.mu.Unlock()
	if !ok {
		fail(c, http.StatusNotFound, "product not found")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (a *API) searchProducts(c *gin.Context) {
	keyword := strings.ToLower(strings.TrimSpace(c.Query("q")))
	if keyword == "" {
		fail(c, http.StatusBadRequest, "search query is required")
		return
	}

	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	var hits []domain.Product
	for _, p := range a.store.products {
		if strings.Contains(strings.ToLower(p.Name), keyword) ||
			strings.Contains(strings.ToLower(p.Description), keyword) {
			hits = append(hits, p)
		}
	}
	c.JSON(http.StatusOK, gin.H{"data": hits, "total": len(hits)})
}

func (a *API) listCategories(c *gin.Context) {
	a.store.mu.Lock()
	cats := append([]domain.Category(nil), a.store.cats...)
	a.store.mu.Unlock()
	c.JSON(http.StatusOK, cats)
}

func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
