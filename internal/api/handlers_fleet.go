// handlers_fleet.go - Fleet display-grouping rules handlers
package api

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/groundtime-visualizer/backend/internal/models"
	"github.com/labstack/echo/v4"
	"gopkg.in/yaml.v3"
)

// LoadDefaultFleetRules loads data/defaults/fleet.yaml if it exists.
// Grouping and colors are applied client-side; the backend only serves
// the rules.
func (h *Handler) LoadDefaultFleetRules() error {
	rulesPath := filepath.Join(h.dataDir, "defaults", "fleet.yaml")
	data, err := os.ReadFile(rulesPath)
	if os.IsNotExist(err) {
		return nil // No default rules file
	}
	if err != nil {
		return fmt.Errorf("reading default fleet rules: %w", err)
	}

	rules, err := parseFleetRules(data)
	if err != nil {
		return fmt.Errorf("parsing default fleet rules: %w", err)
	}

	h.fleetRules = rules
	return nil
}

func parseFleetRules(data []byte) (*models.FleetRules, error) {
	var rules models.FleetRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, err
	}
	switch rules.GroupBy {
	case "", "aircraft", "carrier":
	default:
		return nil, fmt.Errorf("unknown group_by %q", rules.GroupBy)
	}
	return &rules, nil
}

// HandleGetFleetRules returns the active fleet grouping rules.
func (h *Handler) HandleGetFleetRules(c echo.Context) error {
	if h.fleetRules == nil {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"hasRules": false,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"hasRules": true,
		"rules":    h.fleetRules,
	})
}

// HandleUploadFleetRules replaces the fleet grouping rules with an
// uploaded YAML document.
func (h *Handler) HandleUploadFleetRules(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("missing file form field", err)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return NewInternalError("failed to read uploaded file", err)
	}

	rules, err := parseFleetRules(data)
	if err != nil {
		return NewBadRequestError("invalid fleet rules YAML", err)
	}

	h.fleetRules = rules
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"groups": len(rules.Groups),
	})
}
