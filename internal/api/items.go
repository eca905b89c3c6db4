package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/rkm/s1etad/internal/config"
	"github.com/rkm/s1etad/internal/etad"
	"github.com/rkm/s1etad/internal/stac"
	"github.com/rkm/s1etad/pkg/geojson"
)

// burstCollection is the STAC collection id common to all burst items.
const burstCollection = "etad-bursts"

// itemCollection converts a catalogue selection into a STAC ItemCollection,
// one item per burst row.
func (h *Handlers) itemCollection(p *etad.Product, selection *etad.Catalogue) (*stac.ItemCollection, error) {
	items := make([]*stac.Item, 0, selection.Len())
	for i := 0; i < selection.Len(); i++ {
		item, err := h.burstItem(p, selection, i)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return stac.NewItemCollection(items), nil
}

// burstItem builds the STAC item for one catalogue row.
func (h *Handlers) burstItem(p *etad.Product, cat *etad.Catalogue, row int) (*stac.Item, error) {
	swathID := cat.SwathID[row]
	bIndex := cat.BIndex[row]

	s, err := p.Swath(swathID)
	if err != nil {
		return nil, err
	}
	b, err := s.Burst(bIndex)
	if err != nil {
		return nil, err
	}
	fp, err := b.Footprint()
	if err != nil {
		return nil, err
	}
	bbox, err := geojson.ComputeBBox(fp)
	if err != nil {
		return nil, err
	}

	item := stac.NewItem(burstItemID(swathID, bIndex), burstCollection, h.cfg.API.Version)
	item.Geometry = fp
	item.Bbox = bbox

	start := cat.AzimuthTimeMin[row]
	end := cat.AzimuthTimeMax[row]
	mid := start.Add(end.Sub(start) / 2)

	item.Properties["datetime"] = mid.Format(time.RFC3339Nano)
	item.Properties["start_datetime"] = start.Format(time.RFC3339Nano)
	item.Properties["end_datetime"] = end.Format(time.RFC3339Nano)
	item.Properties["etad:swath"] = swathID
	item.Properties["etad:pindex"] = cat.PIndex[row]
	item.Properties["etad:sindex"] = cat.SIndex[row]
	item.Properties["etad:bindex"] = bIndex
	item.Properties["etad:product_id"] = cat.ProductID[row]

	base := h.cfg.API.BaseURL
	item.Links = append(item.Links,
		&stac.Link{
			Rel:  "self",
			Href: fmt.Sprintf("%s/swaths/%s/bursts/%d", base, swathID, bIndex),
			Type: "application/json",
		},
		&stac.Link{
			Rel:  "root",
			Href: base + "/",
			Type: "application/json",
		},
	)

	return item, nil
}

func burstItemID(swathID string, bIndex int) string {
	return fmt.Sprintf("%s-burst-%d", strings.ToLower(swathID), bIndex)
}

// newLandingCatalog builds the root catalog served by the landing page.
func newLandingCatalog(cfg *config.Config) *stac.Catalog {
	return stac.NewCatalog("s1etad-root", cfg.API.Title, cfg.API.Description, cfg.API.Version)
}

// addCatalogLinks attaches the navigation links to the root catalog.
func addCatalogLinks(c *stac.Catalog, baseURL string) {
	stac.AddCatalogLink(c, "self", baseURL+"/", "application/json")
	stac.AddCatalogLink(c, "root", baseURL+"/", "application/json")
	stac.AddCatalogLink(c, "product", baseURL+"/product", "application/json")
	stac.AddCatalogLink(c, "bursts", baseURL+"/bursts", "application/geo+json")
	stac.AddCatalogLink(c, "footprint", baseURL+"/footprint", "application/geo+json")
	stac.AddCatalogLink(c, "health", baseURL+"/health", "application/json")
}
