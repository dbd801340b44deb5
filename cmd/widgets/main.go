package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goliatone/go-widgets/internal/di"
	"github.com/goliatone/go-widgets/pkg/commands"
	"github.com/goliatone/go-widgets/pkg/config"
	"github.com/goliatone/go-widgets/pkg/domain"
	"github.com/goliatone/go-widgets/pkg/interfaces/logger"
	"github.com/goliatone/go-widgets/pkg/toc"
	"github.com/joho/godotenv"
)

const usage = `usage: widgets <command> [flags] < input

commands:
  to-block    read a widget record (JSON) and print its block
  to-widget   read block markup and print one widget record per block
  toc         read block markup and print its table of contents
  save        read block markup and store it as a sidebar
  load        print the blocks of a stored sidebar as markup
  render      print a stored sidebar as HTML
  types       list registered block types`

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load(envConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	lgr := logger.New(os.Stderr, logger.ParseLevel(cfg.Logging.Level))

	ctx := logger.WithLogger(context.Background(), lgr)
	container, err := di.New(ctx, di.Options{Config: cfg, Logger: lgr})
	if err != nil {
		lgr.Error("container setup failed", logger.Field{Key: "error", Value: err})
		os.Exit(1)
	}
	defer container.Close()

	if err := run(ctx, container, os.Args[1], os.Args[2:], os.Stdin, os.Stdout); err != nil {
		lgr.Error("command failed", logger.Field{Key: "command", Value: os.Args[1]}, logger.Field{Key: "error", Value: err})
		container.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, c *di.Container, name string, args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	sidebarID := fs.String("sidebar", "sidebar-1", "sidebar id")
	actorID := fs.String("actor", "", "actor recorded in activity events")
	page := fs.Int("page", 1, "page to build the table of contents for")
	allPages := fs.Bool("all", false, "include headings from every page")
	locale := fs.String("locale", "", "locale used for block type titles")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch name {
	case "to-block":
		var record domain.WidgetRecord
		if err := json.NewDecoder(in).Decode(&record); err != nil {
			return fmt.Errorf("decode widget: %w", err)
		}
		block, err := c.Transformer.WidgetToBlock(record)
		if err != nil {
			return err
		}
		return writeJSON(out, block)

	case "to-widget":
		markup, err := io.ReadAll(in)
		if err != nil {
			return err
		}
		parsed := c.Codec.Parse(string(markup))
		records := make([]domain.WidgetRecord, 0, len(parsed))
		for _, block := range parsed {
			record, err := c.Transformer.BlockToWidget(block, domain.WidgetRecord{})
			if err != nil {
				return err
			}
			records = append(records, record)
		}
		return writeJSON(out, records)

	case "toc":
		markup, err := io.ReadAll(in)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, toc.Render(toc.Build(string(markup), !*allPages, *page)))
		return err

	case "save":
		markup, err := io.ReadAll(in)
		if err != nil {
			return err
		}
		return c.Commands.SaveSidebar.Execute(ctx, commands.SaveSidebar{
			SidebarID: *sidebarID,
			Markup:    string(markup),
			ActorID:   *actorID,
		})

	case "load":
		loaded, err := c.Sidebars.Load(ctx, *sidebarID)
		if err != nil {
			return err
		}
		markup, err := c.Codec.SerializeAll(loaded)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, markup)
		return err

	case "render":
		html, err := c.Renderer.Render(ctx, *sidebarID)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, html)
		return err

	case "types":
		fns := c.Localization.Functions(*locale)
		for _, blockName := range c.Codec.Registry().Names() {
			bt, _ := c.Codec.Registry().Lookup(blockName)
			if _, err := fmt.Fprintf(out, "%s\t%s\n", blockName, fns.Translate(bt.Title)); err != nil {
				return err
			}
		}
		return nil

	default:
		return errors.New("unknown command " + name + "\n" + usage)
	}
}

func writeJSON(out io.Writer, value any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

// envConfig maps WIDGETS_* environment variables onto config keys.
func envConfig() map[string]any {
	input := map[string]any{}
	section := func(name string) map[string]any {
		if m, ok := input[name].(map[string]any); ok {
			return m
		}
		m := map[string]any{}
		input[name] = m
		return m
	}
	if v := os.Getenv("WIDGETS_STORAGE_DRIVER"); v != "" {
		section("storage")["driver"] = v
	}
	if v := os.Getenv("WIDGETS_STORAGE_DSN"); v != "" {
		section("storage")["dsn"] = v
	}
	if v := os.Getenv("WIDGETS_LOG_LEVEL"); v != "" {
		section("logging")["level"] = v
	}
	if v := os.Getenv("WIDGETS_DEFAULT_LOCALE"); v != "" {
		section("localization")["default_locale"] = v
	}
	if v := os.Getenv("WIDGETS_STRICT_BLOCKS"); v != "" {
		section("blocks")["strict_names"] = strings.EqualFold(v, "true") || v == "1"
	}
	return input
}
