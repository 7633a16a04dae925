// Command spoolappend delivers one article from standard input into a spool
// group. It is meant to be run by an MTA or a news feed script.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/emurenMRz/newsview/internal/config"
	"github.com/emurenMRz/newsview/internal/newsheader"
	"github.com/emurenMRz/newsview/internal/spool"
)

const exTempFail = 75 // sysexits.h EX_TEMPFAIL

func main() {
	var (
		configPath = flag.String("config", "", "Config file providing spool.path and group")
		dir        = flag.String("dir", "", "Spool directory, overrides the config")
		group      = flag.String("group", "", "Group name, overrides the config")
		raw        = flag.Bool("raw", false, "Store the article as is, without completing its header")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fail("config: %v", err)
	}
	if *dir != "" {
		cfg.Spool.Path = *dir
	}
	if *group != "" {
		cfg.Group = *group
	}

	article, err := io.ReadAll(os.Stdin)
	if err != nil {
		fail("read error: %v", err)
	}
	if len(article) == 0 {
		fail("empty article")
	}

	now := time.Now()
	if !*raw {
		if article, _, err = newsheader.Normalize(article, cfg.Group, spool.MessageIDDomain, now); err != nil {
			fail("normalize: %v", err)
		}
	}
	if err := (spool.Dir{Path: cfg.Spool.Path}).Append(cfg.Group, article, now); err != nil {
		fail("cannot append to %s: %v", cfg.Group, err)
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(exTempFail)
}
