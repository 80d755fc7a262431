package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"socialmap-api/internal/client"
	"socialmap-api/internal/config"
	"socialmap-api/internal/geo"
	"socialmap-api/internal/logging"
	"socialmap-api/internal/mapview"
	"socialmap-api/internal/models"
	"socialmap-api/internal/utils"
)

const usage = `usage: socialmap <command> [flags]

commands:
  health                          check the API is reachable
  photos [-user id]               list photos, oldest first
  feed [-lat n -lng n]            list photos nearest first
  upload -file path -lat n -lng n upload an image file
  delete -id photo_<ms>           delete a photo
  map [-interactive]              render photo markers
`

func main() {
	logging.Init(logging.Config{Level: os.Getenv("LOG_LEVEL"), Format: "console"})

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.LoadClient()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	c := client.New(cfg.BaseURL, cfg.Token, client.WithTimeout(cfg.Timeout))

	ctx := context.Background()
	cmd, args := os.Args[1], os.Args[2:]

	switch cmd {
	case "health":
		err = c.Health(ctx)
		if err == nil {
			fmt.Println("ok")
		}
	case "photos":
		err = runPhotos(ctx, c, args, os.Stdout)
	case "feed":
		err = runFeed(ctx, c, args, os.Stdout)
	case "upload":
		err = runUpload(ctx, c, args)
	case "delete":
		err = runDelete(ctx, c, args)
	case "map":
		err = runMap(ctx, c, args, os.Stdin, os.Stdout)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		logging.Error().Err(err).Str("command", cmd).Msg("Command failed")
		os.Exit(1)
	}
}

func runPhotos(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("photos", flag.ExitOnError)
	user := fs.String("user", "", "Only photos uploaded by this user id")
	fs.Parse(args)

	photos, err := c.ListPhotos(ctx, models.PhotoFilter{UserId: *user})
	if err != nil {
		return err
	}
	for _, p := range photos {
		fmt.Fprintf(out, "%s\t%.5f,%.5f\t%s\t%s\t%s\n", p.Id, p.Latitude, p.Longitude, shotAt(p), p.LocationName, p.SignedURL)
	}
	return nil
}

func runFeed(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("feed", flag.ExitOnError)
	lat := fs.Float64("lat", 0, "Viewer latitude")
	lng := fs.Float64("lng", 0, "Viewer longitude")
	fs.Parse(args)

	var viewer *geo.Point
	if isSet(fs, "lat") && isSet(fs, "lng") {
		viewer = &geo.Point{Lat: *lat, Lng: *lng}
	}

	photos, err := c.Feed(ctx, viewer)
	if err != nil {
		return err
	}
	for _, p := range photos {
		dist := "-"
		if p.DistanceKm != nil {
			dist = geo.FormatDistance(*p.DistanceKm)
		}
		fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\n", p.Id, dist, shotAt(p.Photo), p.LocationName, p.SignedURL)
	}
	return nil
}

func runUpload(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	file := fs.String("file", "", "Image file to upload")
	lat := fs.Float64("lat", 0, "Latitude")
	lng := fs.Float64("lng", 0, "Longitude")
	user := fs.String("user", "", "Owner user id (must match the session token)")
	fs.Parse(args)

	if *file == "" || !isSet(fs, "lat") || !isSet(fs, "lng") {
		return errors.New("upload requires -file, -lat and -lng")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("read %s: %w", *file, err)
	}

	in := client.UploadInput{
		Data:      data,
		Filename:  filepath.Base(*file),
		Latitude:  *lat,
		Longitude: *lng,
	}
	if *user != "" {
		in.UserId = user
	}

	resp, err := c.UploadPhoto(ctx, in)
	if err != nil {
		return err
	}
	fmt.Printf("%s\t%s\n", resp.PhotoId, resp.SignedURL)
	return nil
}

func runDelete(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.String("id", "", "Photo id")
	fs.Parse(args)

	if *id == "" {
		return errors.New("delete requires -id")
	}
	if err := c.DeletePhoto(ctx, *id); err != nil {
		return err
	}
	fmt.Println("deleted", *id)
	return nil
}

func runMap(ctx context.Context, c *client.Client, args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("map", flag.ExitOnError)
	interactive := fs.Bool("interactive", false, "Read open/delete/refresh/quit commands from stdin")
	fs.Parse(args)

	scanner := bufio.NewScanner(in)
	layer := mapview.NewLayer(c, &textSurface{out: out}, &promptConfirmer{in: scanner, out: out})
	defer layer.Close()

	center := mapview.CenterFor(nil)
	fmt.Fprintf(out, "center %.4f,%.4f\n", center.Lat, center.Lng)

	if err := layer.Refresh(ctx); err != nil {
		return err
	}
	if !*interactive {
		return nil
	}

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "open", "delete":
			if len(fields) != 2 {
				fmt.Fprintf(out, "usage: %s <photo id>\n", fields[0])
				continue
			}
			button := mapview.Primary
			if fields[0] == "delete" {
				button = mapview.Secondary
			}
			err = layer.Activate(ctx, fields[1], button)
		case "refresh":
			err = layer.Refresh(ctx)
		case "list":
			for _, m := range layer.Markers() {
				fmt.Fprintf(out, "%s\t%s\n", m.PhotoId, m.Position)
			}
		case "quit", "exit":
			return nil
		default:
			fmt.Fprintln(out, "commands: open <id>, delete <id>, refresh, list, quit")
		}
		if err != nil {
			fmt.Fprintln(out, "error:", err)
		}
	}
}

// textSurface prints marker changes as lines of text.
type textSurface struct {
	out io.Writer
}

func (s *textSurface) Place(m mapview.Marker) {
	fmt.Fprintf(s.out, "+ %s at %s\n", m.PhotoId, m.Position)
}

func (s *textSurface) Remove(photoID string) {
	fmt.Fprintf(s.out, "- %s\n", photoID)
}

func (s *textSurface) Open(m mapview.Marker) {
	fmt.Fprintf(s.out, "%s\n", m.SignedURL)
}

type promptConfirmer struct {
	in  *bufio.Scanner
	out io.Writer
}

func (p *promptConfirmer) Confirm(prompt string) bool {
	fmt.Fprintf(p.out, "%s [y/N] ", prompt)
	if !p.in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(p.in.Text()))
	return answer == "y" || answer == "yes"
}

// shotAt prefers the EXIF capture time over the upload time.
func shotAt(p models.Photo) string {
	if p.TakenAt != nil {
		return utils.FormatTime(*p.TakenAt)
	}
	return utils.FormatTime(p.CreatedAt)
}

func isSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
