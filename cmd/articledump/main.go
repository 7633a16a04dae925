// Command articledump decomposes articles the way the gateway does and
// prints what it found: headers, header problems, body, parts and the
// defects that were worked around.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/textproto"
	"os"

	"github.com/emurenMRz/newsview/internal/article"
	"github.com/emurenMRz/newsview/internal/config"
	"github.com/emurenMRz/newsview/internal/news"
	"github.com/emurenMRz/newsview/internal/newsheader"
	"github.com/emurenMRz/newsview/internal/nntp"
	"github.com/emurenMRz/newsview/internal/spool"
	"github.com/emurenMRz/newsview/internal/textdecode"
)

func main() {
	var (
		mode       = flag.String("mode", "show", "Operation mode: show, validate")
		inputPath  = flag.String("file", "", "Raw article file")
		configPath = flag.String("config", "", "Config file selecting the backend (with -id)")
		articleID  = flag.Int64("id", 0, "Article number to fetch; 0 validates the whole group")
	)
	flag.Parse()
	log.SetFlags(0)

	if *mode != "show" && *mode != "validate" {
		log.Fatal("Error: Unknown mode. Use show or validate")
	}

	if *inputPath != "" {
		raw, err := os.ReadFile(*inputPath)
		if err != nil {
			log.Fatal(err)
		}
		report(os.Stdout, *mode, *inputPath, raw)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	sess := news.NewSession(dialer(cfg), cfg.Group, nil)
	defer sess.Close()
	ctx := context.Background()

	if *articleID > 0 {
		raw, err := sess.FetchArticleRaw(ctx, *articleID)
		if err != nil {
			exitUpstream(err)
		}
		report(os.Stdout, *mode, fmt.Sprintf("%s/%d", cfg.Group, *articleID), raw)
		return
	}
	if *mode != "validate" {
		log.Fatal("Error: -id is required for show mode")
	}
	if err := validateGroup(ctx, os.Stdout, sess, cfg.Group); err != nil {
		exitUpstream(err)
	}
}

func dialer(cfg *config.Config) news.Dialer {
	if cfg.Backend == config.BackendSpool {
		return spool.Dir{Path: cfg.Spool.Path}
	}
	return nntp.Dialer{Addr: cfg.NNTPAddr(), Timeout: cfg.NNTP.Timeout}
}

func exitUpstream(err error) {
	if news.IsUpstream(err) {
		fmt.Fprintf(os.Stderr, "NNTP Error: %v\n", err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}

// validateGroup checks the headers of every article in the group. Missing
// article numbers are skipped.
func validateGroup(ctx context.Context, w io.Writer, sess *news.Session, group string) error {
	g, err := sess.Bounds(ctx)
	if err != nil {
		return err
	}
	for id := g.First; id <= g.Last; id++ {
		raw, err := sess.FetchArticleRaw(ctx, id)
		var protoErr *textproto.Error
		if errors.As(err, &protoErr) && protoErr.Code == 423 {
			continue
		}
		if err != nil {
			return err
		}
		report(w, "validate", fmt.Sprintf("%s/%d", group, id), raw)
	}
	return nil
}

func report(w io.Writer, mode, name string, raw []byte) {
	block, _ := newsheader.Split(raw)
	findings := newsheader.Validate(newsheader.Parse(block))

	if mode == "validate" {
		outputFindings(w, name, findings)
		return
	}

	a := article.Decompose(raw)
	fmt.Fprintf(w, "Article %s:\n", name)
	fmt.Fprintf(w, "Subject: %s\n", textdecode.DecodeHeader(a.Subject))
	fmt.Fprintf(w, "From: %s\n", textdecode.DecodeHeader(a.Author))
	fmt.Fprintf(w, "Date: %s\n", a.Date)
	fmt.Fprintf(w, "Message-ID: %s\n", a.MessageID)

	fmt.Fprintln(w)
	outputFindings(w, name, findings)

	fmt.Fprintln(w, "\nBody:")
	fmt.Fprintln(w, a.BodyText)

	if len(a.Parts) > 0 {
		fmt.Fprintln(w, "\nParts:")
		for _, p := range a.Parts {
			fmt.Fprintf(w, "  [%d] %s %s %d bytes %s\n", p.Index, p.DisplayName(), p.ContentType, p.Size(), p.Kind)
		}
	}
	if len(a.Defects) > 0 {
		fmt.Fprintln(w, "\nDefects:")
		for _, d := range a.Defects {
			fmt.Fprintf(w, "  %s\n", d)
		}
	}
}

func outputFindings(w io.Writer, name string, findings []newsheader.Finding) {
	if len(findings) == 0 {
		fmt.Fprintf(w, "%s: no header problems found.\n", name)
		return
	}
	for _, f := range findings {
		switch f.Status {
		case newsheader.StatusMissing:
			fmt.Fprintf(w, "%s: %s header is missing\n", name, f.Field)
		case newsheader.StatusInvalid:
			fmt.Fprintf(w, "%s: %s header is invalid (%s)\n", name, f.Field, f.Detail)
		}
	}
}
