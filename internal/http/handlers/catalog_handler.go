// README: Catalog handlers: vehicle listing, vehicle detail, add-ons and pickup/return locations.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"carrental/internal/modules/catalog"
	"carrental/internal/modules/quote"
)

type CatalogHandler struct {
	catalog    *catalog.Catalog
	branchMode bool
}

func NewCatalogHandler(cat *catalog.Catalog, branchMode bool) *CatalogHandler {
	return &CatalogHandler{catalog: cat, branchMode: branchMode}
}

// ListVehicles supports ?q=, ?type= (omit or "All" for every type) and
// ?sort=price_asc|price_desc|grade_desc.
func (h *CatalogHandler) ListVehicles(c *gin.Context) {
	f := catalog.Filter{Query: c.Query("q")}

	if raw := strings.TrimSpace(c.Query("type")); raw != "" && !strings.EqualFold(raw, "all") {
		t, err := catalog.ParseVehicleType(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		f.Type = t
	}

	switch s := catalog.SortOrder(c.DefaultQuery("sort", string(catalog.SortPriceAsc))); s {
	case catalog.SortPriceAsc, catalog.SortPriceDesc, catalog.SortGradeDesc:
		f.Sort = s
	default:
		writeError(c, http.StatusBadRequest, "unknown sort: "+string(s))
		return
	}

	vehicles := h.catalog.List(f)
	writeJSON(c, http.StatusOK, gin.H{"vehicles": vehicles, "count": len(vehicles)})
}

func (h *CatalogHandler) GetVehicle(c *gin.Context) {
	v, err := h.catalog.Vehicle(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(c, http.StatusOK, v)
}

func (h *CatalogHandler) ListAddons(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"addons": h.catalog.Addons()})
}

func (h *CatalogHandler) ListLocations(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{
		"branchModeEnabled": h.branchMode,
		"branches":          h.catalog.Branches(),
		"otherOption":       quote.OtherBranch,
	})
}
