package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/woozymasta/mahamap/internal/geo"
	"github.com/woozymasta/mahamap/internal/pathgen"
	"github.com/woozymasta/mahamap/internal/render"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Input       string  `short:"i" long:"in"           description:"Input GeoJSON FeatureCollection or path request. Reads from stdin if empty"`
	Output      string  `short:"o" long:"out"          description:"Output file path. Writes to stdout if empty"`
	Format      string  `short:"f" long:"format"       description:"Output format" choice:"json" choice:"yaml" choice:"svg" default:"json"`
	NameKey     string  `short:"n" long:"name-key"     description:"Feature property holding the display name" default:"district"`
	FallbackKey string  `short:"N" long:"fallback-key" description:"Fallback property for the display name" default:"dtname"`
	Title       string  `short:"t" long:"title"        description:"SVG document title"`
	Scale       float64 `short:"s" long:"scale"        description:"Projection scale, fitted to the input when zero"`
	CenterLon   float64 `long:"center-lon"             description:"Projection center longitude"`
	CenterLat   float64 `long:"center-lat"             description:"Projection center latitude"`
	Padding     float64 `long:"padding"                description:"Canvas padding used when fitting" default:"20"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Read Input
	var inputData []byte
	var err error

	if opts.Input != "" {
		inputData, err = os.ReadFile(opts.Input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input file: %v\n", err)
			os.Exit(1)
		}
	} else {
		inputData, err = io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
			os.Exit(1)
		}
	}

	req, err := buildRequest(inputData, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing input: %v\n", err)
		os.Exit(1)
	}

	resp := pathgen.Generate(req, geo.NameKeys{Primary: opts.NameKey, Fallback: opts.FallbackKey})

	// marshal
	var outputData []byte
	switch opts.Format {
	case "yaml":
		outputData, err = yaml.Marshal(resp)
	case "svg":
		outputData, err = render.SVG(resp.Paths, render.SVGOptions{Title: opts.Title})
	default:
		outputData, err = json.MarshalIndent(resp, "", "  ")
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling data: %v\n", err)
		os.Exit(1)
	}

	if opts.Output != "" {
		err = os.WriteFile(opts.Output, outputData, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Successfully converted %d features to %s (format: %s)\n", len(resp.Paths), opts.Output, opts.Format)
	} else {
		fmt.Println(string(outputData))
	}
}

// buildRequest accepts either a GeoJSON FeatureCollection or a path request
// message. Collections are decoded into typed geometries; requests keep the
// raw coordinates and go through classification.
func buildRequest(data []byte, opts Options) (geo.PathRequest, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return geo.PathRequest{}, err
	}

	req := geo.PathRequest{Type: geo.MessageGeneratePaths}
	if probe.Type == "FeatureCollection" {
		fc, err := geo.ParseFeatureCollection(data)
		if err != nil {
			return geo.PathRequest{}, err
		}
		req.Features = geo.FromOrbCollection(fc).Features
		if opts.Scale == 0 {
			req.Params = geo.Fit(geo.CollectionBound(fc), render.CanvasWidth, render.CanvasHeight, opts.Padding)
		}
	} else if err := json.Unmarshal(data, &req); err != nil {
		return geo.PathRequest{}, err
	}

	if opts.Scale != 0 {
		req.Params = geo.Params{Scale: opts.Scale, CenterLon: opts.CenterLon, CenterLat: opts.CenterLat}
	}

	return req, nil
}
