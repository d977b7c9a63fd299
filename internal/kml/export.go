package kml

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aibandobast/bandobast/internal/geo"
)

// Grouping selects the folder layout of the document.
type Grouping string

const (
	// GroupCity puts every entity kind in one city-wide folder.
	GroupCity Grouping = "city"
	// GroupPS nests per-kind folders inside one folder per police station.
	GroupPS Grouping = "ps"
)

// ParseGrouping accepts "city" (the default for an empty value) or "ps".
func ParseGrouping(s string) (Grouping, error) {
	switch g := Grouping(strings.ToLower(strings.TrimSpace(s))); g {
	case "":
		return GroupCity, nil
	case GroupCity, GroupPS:
		return g, nil
	default:
		return "", fmt.Errorf("unknown grouping %q (want city or ps)", s)
	}
}

// Document defaults.
const (
	DefaultDocumentName = "AI BANDOBaST - Ganpati Utsav 2025 Nashik"
	DefaultDescription  = "Bandobast planning data exported from AI BANDOBaST portal"
	ContentType         = "application/vnd.google-earth.kml+xml"
)

// Folder names.
const (
	FolderUnits      = "Event Units"
	FolderGhats      = "Ghats"
	FolderRoutes     = "Routes"
	FolderZones      = "Zones"
	FolderUnassigned = "Unassigned"
)

// Options controls Render.
type Options struct {
	Grouping     Grouping
	Include      geo.Include // zero value selects every layer
	DocumentName string
	Description  string
	Logger       *zap.Logger
}

// Skipped names an entity that produced no placemark and why.
type Skipped struct {
	Kind   string
	Name   string
	Reason error
}

// Document is a rendered KML file.
type Document struct {
	Data       []byte
	Placemarks int
	Skipped    []Skipped
}

// Export renders c and returns the KML bytes.
func Export(c *geo.Collections, opts Options) ([]byte, error) {
	doc, err := Render(c, opts)
	if err != nil {
		return nil, err
	}
	return doc.Data, nil
}

// Render builds the KML document for c. Output depends only on c and opts:
// equal inputs give byte-identical documents. Entities that cannot be drawn
// are left out and listed in Document.Skipped.
func Render(c *geo.Collections, opts Options) (*Document, error) {
	if c == nil {
		return nil, errors.New("kml: nil collections")
	}
	if opts.Grouping == "" {
		opts.Grouping = GroupCity
	}
	if opts.Include == (geo.Include{}) {
		opts.Include = geo.AllLayers()
	}
	if opts.DocumentName == "" {
		opts.DocumentName = DefaultDocumentName
	}
	if opts.Description == "" {
		opts.Description = DefaultDescription
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	r := &renderer{opts: opts, doc: &Document{}}
	w := &r.w
	w.line(`<?xml version="1.0" encoding="UTF-8"?>`)
	w.open(`kml xmlns="http://www.opengis.net/kml/2.2"`)
	w.open("Document")
	w.line("<name>" + Escape(opts.DocumentName) + "</name>")
	w.line("<description>" + Escape(opts.Description) + "</description>")
	writeStyles(w)

	switch opts.Grouping {
	case GroupCity:
		r.city(c)
	case GroupPS:
		r.byStation(c)
	default:
		return nil, fmt.Errorf("kml: unknown grouping %q", opts.Grouping)
	}

	w.close("Document")
	w.close("kml")

	r.doc.Data = w.bytes()
	return r.doc, nil
}

// Filename is the attachment name for a document exported at t.
func Filename(g Grouping, t time.Time) string {
	return fmt.Sprintf("bandobast_%s_%s.kml", g, t.UTC().Format("2006-01-02"))
}

type renderer struct {
	opts Options
	w    writer
	doc  *Document
}

func (r *renderer) city(c *geo.Collections) {
	inc := r.opts.Include
	if inc.Units {
		r.unitsFolder(c.Units)
	}
	if inc.Ghats {
		r.ghatsFolder(c.Terminals)
	}
	if inc.Routes {
		r.routesFolder(c.Routes)
	}
	if inc.Zones {
		r.zonesFolder(c.Zones)
	}
}

func (r *renderer) byStation(c *geo.Collections) {
	inc := r.opts.Include

	known := make(map[string]bool, len(c.Stations))
	for _, ps := range c.Stations {
		known[ps.ID] = true
	}

	for _, ps := range c.Stations {
		r.w.open("Folder")
		r.w.line("<name>" + Escape(ps.Name) + "</name>")
		r.w.line("<description>Police Station: " + Escape(ps.Name) + "</description>")
		r.kindFolders(inc,
			filter(c.Units, func(u geo.Unit) bool { return u.PSID == ps.ID }),
			filter(c.Routes, func(rt geo.Route) bool { return rt.PSID == ps.ID }),
			filter(c.Zones, func(z geo.Zone) bool { return z.PSID == ps.ID }),
		)
		r.w.close("Folder")
	}

	// Entities with no registered station keep the membership they have in
	// the city layout.
	units := filter(c.Units, func(u geo.Unit) bool { return !known[u.PSID] })
	routes := filter(c.Routes, func(rt geo.Route) bool { return !known[rt.PSID] })
	zones := filter(c.Zones, func(z geo.Zone) bool { return !known[z.PSID] })
	if (inc.Units && len(units) > 0) || (inc.Routes && len(routes) > 0) || (inc.Zones && len(zones) > 0) {
		r.w.open("Folder")
		r.w.line("<name>" + FolderUnassigned + "</name>")
		r.kindFolders(inc, units, routes, zones)
		r.w.close("Folder")
	}

	if inc.Ghats && len(c.Terminals) > 0 {
		r.ghatsFolder(c.Terminals)
	}
}

func (r *renderer) kindFolders(inc geo.Include, units []geo.Unit, routes []geo.Route, zones []geo.Zone) {
	if inc.Units {
		r.unitsFolder(units)
	}
	if inc.Routes {
		r.routesFolder(routes)
	}
	if inc.Zones {
		r.zonesFolder(zones)
	}
}

func (r *renderer) unitsFolder(units []geo.Unit) {
	r.folder(FolderUnits, len(units), func(i int) (string, string, error) {
		pm, err := UnitPlacemark(units[i])
		return units[i].UnitName, pm, err
	})
}

func (r *renderer) ghatsFolder(terminals []geo.Terminal) {
	r.folder(FolderGhats, len(terminals), func(i int) (string, string, error) {
		pm, err := TerminalPlacemark(terminals[i])
		return terminals[i].GhatName, pm, err
	})
}

func (r *renderer) routesFolder(routes []geo.Route) {
	r.folder(FolderRoutes, len(routes), func(i int) (string, string, error) {
		pm, err := RoutePlacemark(routes[i])
		return routes[i].RouteName, pm, err
	})
}

func (r *renderer) zonesFolder(zones []geo.Zone) {
	r.folder(FolderZones, len(zones), func(i int) (string, string, error) {
		pm, err := ZonePlacemark(zones[i])
		return zones[i].ZoneName, pm, err
	})
}

// folder writes one named folder holding the placemarks produced by format
// for indexes [0, n). Failed entities are recorded and logged, never written.
func (r *renderer) folder(name string, n int, format func(i int) (entity, placemark string, err error)) {
	r.w.open("Folder")
	r.w.line("<name>" + name + "</name>")
	for i := 0; i < n; i++ {
		entity, pm, err := format(i)
		if err != nil {
			r.doc.Skipped = append(r.doc.Skipped, Skipped{Kind: name, Name: entity, Reason: err})
			r.opts.Logger.Debug("skipping placemark",
				zap.String("folder", name),
				zap.String("entity", entity),
				zap.Error(err),
			)
			continue
		}
		r.w.block(pm)
		r.doc.Placemarks++
	}
	r.w.close("Folder")
}

func filter[T any](items []T, keep func(T) bool) []T {
	var out []T
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}
