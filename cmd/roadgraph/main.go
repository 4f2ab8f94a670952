package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sanonone/roadgraph/pkg/core"
	"github.com/sanonone/roadgraph/pkg/core/profile"
	"github.com/sanonone/roadgraph/pkg/core/tags"
	"github.com/sanonone/roadgraph/pkg/persistence"
)

// fileConfig is the optional yaml configuration for the inspection tool.
type fileConfig struct {
	// Profiles lists the vehicle profile names known to this
	// installation; stored names outside this list are unresolvable.
	Profiles []string `yaml:"profiles"`

	// SkipUnknownProfiles loads files referencing unknown profiles
	// anyway, dropping those profiles with a warning.
	SkipUnknownProfiles bool `yaml:"skip_unknown_profiles"`
}

func main() {
	configPath := flag.String("config", "", "Path to an optional yaml config with known profile names")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s [-config file] info|verify <graph-file>\n", os.Args[0])
		os.Exit(2)
	}
	command, path := flag.Arg(0), flag.Arg(1)

	var cfg fileConfig
	if *configPath != "" {
		raw, err := os.ReadFile(*configPath)
		if err != nil {
			log.Fatalf("cannot read config: %v", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			log.Fatalf("cannot parse config: %v", err)
		}
	}

	switch command {
	case "info":
		// lenient: unknown profiles are reported, not fatal
		g, err := load(path, cfg, true)
		if err != nil {
			log.Fatalf("cannot load %s: %v", path, err)
		}
		printInfo(g)
	case "verify":
		// strict: every stored profile name must resolve
		if _, err := load(path, cfg, cfg.SkipUnknownProfiles); err != nil {
			log.Fatalf("verification failed: %v", err)
		}
		fmt.Println("OK")
	default:
		log.Fatalf("unknown command %q (want info or verify)", command)
	}
}

func load(path string, cfg fileConfig, skipUnknown bool) (*core.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var reg *profile.Registry
	if len(cfg.Profiles) > 0 {
		reg = profile.NewRegistry(cfg.Profiles...)
	}
	r := persistence.NewReader(reg)
	r.SkipUnknownProfiles = skipUnknown

	g := core.NewGraph(tags.NewIndex())
	if err := r.Read(f, g); err != nil {
		return nil, err
	}
	return g, nil
}

func printInfo(g *core.Graph) {
	fmt.Printf("vertices:        %d\n", g.VertexCount())
	fmt.Printf("edges:           %d\n", g.EdgeCount())
	fmt.Printf("tag collections: %d\n", g.Tags().Max())
	fmt.Printf("total length:    %.2f\n", g.TotalLength())
	for _, p := range g.SupportedProfiles() {
		fmt.Printf("profile:         %s\n", p.Name)
	}
}
