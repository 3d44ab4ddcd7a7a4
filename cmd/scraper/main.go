// Package main provides the entry point for the catalog scraper CLI.
//
// Usage:
//
//	scraper                      interactive prompt
//	scraper search "drill, saw"  walk search results for each term
//	scraper links "u1,u2"        validate and scrape direct product links
//
// See --help for all available options.
package main

func main() {
	Execute()
}
