package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rkm/s1etad/internal/annot"
	"github.com/rkm/s1etad/internal/etad"
	"github.com/rkm/s1etad/pkg/geojson"
)

// writeJSON prints v to stdout as indented JSON.
func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newInfoCmd(state *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print product metadata",
		Example: strings.TrimSpace(`
  etad info --product S1B_IW_ETA__AXDV_..._XXXX.SAFE`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.requireProduct(); err != nil {
				return err
			}
			p, err := etad.OpenProduct(state.cfg.Product.Path)
			if err != nil {
				return err
			}

			sampling, err := p.GridSampling()
			if err != nil {
				return err
			}
			spacing, err := p.GridSpacing()
			if err != nil {
				return err
			}
			inputs, err := p.InputProducts()
			if err != nil {
				return err
			}
			settings, err := p.ProcessingSettings()
			if err != nil {
				return err
			}
			tMin, tMax, err := p.TimeExtent()
			if err != nil {
				return err
			}
			rMin, rMax, err := p.RangeExtent()
			if err != nil {
				return err
			}

			return writeJSON(map[string]any{
				"path":               p.Path(),
				"swaths":             p.SwathIDs(),
				"numBursts":          p.Catalogue().Len(),
				"gridSampling":       sampling,
				"gridSpacing":        spacing,
				"inputProducts":      inputs,
				"processingSettings": settings,
				"azimuthTimeMin":     tMin.Format(time.RFC3339Nano),
				"azimuthTimeMax":     tMax.Format(time.RFC3339Nano),
				"rangeTimeMin":       rMin,
				"rangeTimeMax":       rMax,
			})
		},
	}
}

func newQueryCmd(state *rootState) *cobra.Command {
	var (
		start, end  string
		swaths      []string
		productName string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query the burst catalogue",
		Example: strings.TrimSpace(`
  etad query --product prod.SAFE --swath IW1,IW2
  etad query --product prod.SAFE --start 2025-01-10T04:00:00Z --end 2025-01-10T04:00:20Z`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.requireProduct(); err != nil {
				return err
			}
			p, err := etad.OpenProduct(state.cfg.Product.Path)
			if err != nil {
				return err
			}

			q := etad.Query{ProductName: productName, Swaths: swaths}
			if start != "" {
				t, err := annot.ParseTime(start)
				if err != nil {
					return fmt.Errorf("invalid --start: %w", err)
				}
				q.FirstTime = &t
			}
			if end != "" {
				t, err := annot.ParseTime(end)
				if err != nil {
					return fmt.Errorf("invalid --end: %w", err)
				}
				q.LastTime = &t
			}

			sel, err := p.QueryBurst(q)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(sel)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SWATH\tBINDEX\tPINDEX\tSINDEX\tSTART\tSTOP\tPRODUCT")
			for i := 0; i < sel.Len(); i++ {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t%s\t%s\n",
					sel.SwathID[i], sel.BIndex[i], sel.PIndex[i], sel.SIndex[i],
					sel.AzimuthTimeMin[i].Format(time.RFC3339Nano),
					sel.AzimuthTimeMax[i].Format(time.RFC3339Nano),
					sel.ProductID[i],
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "first azimuth time (RFC 3339 or annotation format)")
	cmd.Flags().StringVar(&end, "end", "", "last azimuth time (RFC 3339 or annotation format)")
	cmd.Flags().StringSliceVar(&swaths, "swath", nil, "restrict to the given swaths")
	cmd.Flags().StringVar(&productName, "input-product", "", "restrict to bursts of this Sentinel-1 product name")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the selection as JSON")

	return cmd
}

func newFootprintCmd(state *rootState) *cobra.Command {
	var swaths []string

	cmd := &cobra.Command{
		Use:   "footprint",
		Short: "Print burst footprints as a GeoJSON FeatureCollection",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.requireProduct(); err != nil {
				return err
			}
			p, err := etad.OpenProduct(state.cfg.Product.Path)
			if err != nil {
				return err
			}

			ids := swaths
			if len(ids) == 0 {
				ids = p.SwathIDs()
			}

			var features []*geojson.Feature
			for _, id := range ids {
				s, err := p.Swath(id)
				if err != nil {
					return err
				}
				bursts, err := s.Bursts(nil)
				if err != nil {
					return err
				}
				for _, b := range bursts {
					fp, err := b.Footprint()
					if err != nil {
						return err
					}
					features = append(features, geojson.NewFeature(fp, map[string]any{
						"swath":  b.SwathID(),
						"bIndex": b.Index(),
					}))
				}
			}

			return writeJSON(geojson.NewFeatureCollection(features))
		},
	}

	cmd.Flags().StringSliceVar(&swaths, "swath", nil, "restrict to the given swaths")

	return cmd
}

func newMergeCmd(state *rootState) *cobra.Command {
	var (
		swaths []string
		bursts []int
		meter  bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "merge <correction>",
		Short: "Merge a correction into a continuous raster",
		Long: `Merge stitches one of the correction layers (tropospheric, ionospheric,
geodetic, bistatic, doppler, fmrate, sum) into a continuous raster. With a
single --swath the merge covers that swath; otherwise the selected swaths are
placed onto a common product canvas.`,
		Example: strings.TrimSpace(`
  etad merge sum --product prod.SAFE --meter -o sum.json
  etad merge tropospheric --product prod.SAFE --swath IW1 --bursts 1,2,3`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.requireProduct(); err != nil {
				return err
			}
			kind, err := etad.ParseCorrectionKind(args[0])
			if err != nil {
				return err
			}
			p, err := etad.OpenProduct(state.cfg.Product.Path)
			if err != nil {
				return err
			}

			opts := etad.MergeOptions{BurstIndexes: bursts, Meter: meter}

			var result any
			if len(swaths) == 1 {
				s, err := p.Swath(swaths[0])
				if err != nil {
					return err
				}
				result, err = s.MergeCorrection(kind, opts)
				if err != nil {
					return err
				}
			} else {
				opts.Swaths = swaths
				result, err = p.MergeCorrection(kind, opts)
				if err != nil {
					return err
				}
			}

			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				enc := json.NewEncoder(f)
				return enc.Encode(result)
			}
			return writeJSON(result)
		},
	}

	cmd.Flags().StringSliceVar(&swaths, "swath", nil, "swaths to merge (one swath keeps its own grid)")
	cmd.Flags().IntSliceVar(&bursts, "bursts", nil, "burst indexes to include (single-swath merges only)")
	cmd.Flags().BoolVar(&meter, "meter", false, "convert correction values from seconds to meters")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the merged raster to this file instead of stdout")

	return cmd
}
