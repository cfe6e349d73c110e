package main

import (
	"context"
	"log"
	"os"
	"time"

	flags "github.com/jessevdk/go-flags"
	"github.com/viant/mcp-protocol/schema"
	mcpsrv "github.com/viant/mcp/server"

	"github.com/rawveg/openapi-directory-mcp-sub004/mcp"
)

// Options defines CLI flags for the directory MCP server.
type Options struct {
	HTTPAddr     string        `short:"a" long:"addr" default:":4981" description:"HTTP listen address"`
	DataDir      string        `long:"data-dir" description:"Directory for the cache file and imported specs (defaults to the user cache dir)"`
	PrimaryURL   string        `long:"primary-url" description:"Primary directory base URL"`
	SecondaryURL string        `long:"secondary-url" description:"Secondary directory base URL"`
	CacheTTL     time.Duration `long:"cache-ttl" description:"Snapshot freshness window (e.g. 30m, 24h)"`
	UseData      bool          `long:"use-data" description:"Return tool results as structured data instead of text"`
}

func main() {
	var opts Options
	if _, err := flags.NewParser(&opts, flags.Default).Parse(); err != nil {
		os.Exit(2)
	}

	svc := mcp.NewService(&mcp.Config{
		DataDir:      opts.DataDir,
		PrimaryURL:   opts.PrimaryURL,
		SecondaryURL: opts.SecondaryURL,
		CacheTTL:     opts.CacheTTL,
		UseData:      opts.UseData,
	})
	defer svc.Close()

	server, err := mcpsrv.New(
		mcpsrv.WithImplementation(schema.Implementation{Name: "openapi-directory-mcp", Version: "1.0.0"}),
		mcpsrv.WithNewHandler(mcp.NewHandler(svc)),
		mcpsrv.WithEndpointAddress(opts.HTTPAddr),
		mcpsrv.WithStreamableURI("/mcp"),
	)
	if err != nil {
		log.Fatal(err)
	}

	server.UseStreamableHTTP(true)
	log.Printf("Serving directory tools on %s/mcp", opts.HTTPAddr)
	if err := server.HTTP(context.Background(), opts.HTTPAddr).ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
