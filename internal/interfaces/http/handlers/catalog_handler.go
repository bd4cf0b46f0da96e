package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tradeinlabs/phoneworth/internal/domain/catalog"
	"github.com/tradeinlabs/phoneworth/internal/domain/depreciation"
	"github.com/tradeinlabs/phoneworth/pkg/errors"
)

// CatalogHandler serves the launch-price registry and the normalized phone
// catalog.
type CatalogHandler struct {
	launch *catalog.LaunchIndex
	store  *catalog.Store
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(launch *catalog.LaunchIndex, store *catalog.Store) *CatalogHandler {
	return &CatalogHandler{launch: launch, store: store}
}

// deviceDTO is the wire shape of a launch registry entry.
type deviceDTO struct {
	Key             string          `json:"key"`
	Name            string          `json:"name"`
	Release         string          `json:"release"`
	Announced       string          `json:"announced,omitempty"`
	Storages        []int           `json:"storages"`
	LaunchByStorage map[int]float64 `json:"launchByStorage"`
	Family          string          `json:"family"`
}

func toDeviceDTO(d catalog.Device) deviceDTO {
	return deviceDTO{
		Key:             d.Key,
		Name:            d.Name,
		Release:         d.Release,
		Announced:       d.Announced,
		Storages:        d.Storages(),
		LaunchByStorage: d.LaunchByStorage(),
		Family:          string(d.FamilyKey),
	}
}

// ListDevices handles GET /api/v1/families/:family/devices.
func (h *CatalogHandler) ListDevices(c *gin.Context) {
	family := depreciation.Family(c.Param("family"))
	devices := h.launch.ListDevices(family)
	if len(devices) == 0 {
		respondError(c, errors.New(errors.CodeModelNotFound, "unknown model family").WithDetail("family="+string(family)))
		return
	}

	out := make([]deviceDTO, 0, len(devices))
	for _, d := range devices {
		out = append(out, toDeviceDTO(d))
	}
	c.JSON(http.StatusOK, gin.H{"family": family, "devices": out})
}

// GetDevice handles GET /api/v1/families/:family/devices/:key.
func (h *CatalogHandler) GetDevice(c *gin.Context) {
	family := depreciation.Family(c.Param("family"))
	device, err := h.launch.GetDevice(c.Param("key"))
	if err != nil {
		respondError(c, err)
		return
	}
	if device.FamilyKey != family {
		respondError(c, errors.New(errors.CodeDeviceNotFound, "device is not in this family").
			WithDetail("key="+device.Key+" family="+string(family)))
		return
	}
	c.JSON(http.StatusOK, toDeviceDTO(device))
}

// ListPhones handles GET /api/v1/phones.  The optional brand query filters
// by normalized manufacturer; "all" or absence returns everything.
func (h *CatalogHandler) ListPhones(c *gin.Context) {
	phones, err := h.store.Phones(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	brand := strings.ToLower(c.Query("brand"))
	if brand != "" && brand != "all" {
		filtered := make([]catalog.Phone, 0, len(phones))
		for _, p := range phones {
			if p.Brand == brand {
				filtered = append(filtered, p)
			}
		}
		phones = filtered
	}

	c.JSON(http.StatusOK, gin.H{"phones": phones, "count": len(phones)})
}
