package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"Preview-Player-Go/pkg/config"
	"Preview-Player-Go/pkg/logging"
	"Preview-Player-Go/pkg/music"
	"Preview-Player-Go/pkg/player"
	"Preview-Player-Go/pkg/spotify"
)

var log = logrus.WithField("component", "cli")

var (
	cfgFile    string
	playlistID string
	albumID    string
	searchText string
	token      string
	noEnhance  bool
	autoStart  bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "player",
	Short: "Play Spotify preview clips in the terminal",
	Long: `Player loads a playlist, album or search result and plays the preview clip
of each track in order. Commands are read from stdin:

  p, play, pause, toggle   toggle playback
  n, next                  next track
  b, prev                  previous track
  <number>                 jump to a track
  q, quit                  exit`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	RunE:         run,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: $PREVIEW_PLAYER_CONFIG or ./preview-player.toml)")
	rootCmd.Flags().StringVar(&playlistID, "playlist", "", "Spotify playlist ID")
	rootCmd.Flags().StringVar(&albumID, "album", "", "Spotify album ID")
	rootCmd.Flags().StringVarP(&searchText, "search", "s", "", "search query")
	rootCmd.Flags().StringVar(&token, "token", "", "Spotify access token (overrides SPOTIFY_TOKEN)")
	rootCmd.Flags().BoolVar(&noEnhance, "no-enhance", false, "skip the preview relay and use catalog previews only")
	rootCmd.Flags().BoolVar(&autoStart, "play", true, "start playing the first track immediately")
	rootCmd.MarkFlagsMutuallyExclusive("playlist", "album", "search")
}

func initConfig() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if token != "" {
		cfg.Spotify.AccessToken = token
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// trackSource names what to load from the catalog.
type trackSource struct {
	Playlist string
	Album    string
	Search   string
}

var errNoSource = errors.New("one of --playlist, --album or --search is required")

// loadTracks fetches the tracks named by src.
func loadTracks(ctx context.Context, catalog music.Catalog, src trackSource, limit int) ([]music.Track, error) {
	switch {
	case src.Playlist != "":
		return catalog.PlaylistTracks(ctx, src.Playlist)
	case src.Album != "":
		return catalog.AlbumTracks(ctx, src.Album)
	case src.Search != "":
		return catalog.SearchTracks(ctx, src.Search, limit)
	default:
		return nil, errNoSource
	}
}

func newCatalog(ctx context.Context, sc config.SpotifyConfig) (*spotify.SpotifyClient, error) {
	if sc.AccessToken != "" {
		return spotify.NewSpotifyClientWithToken(sc.AccessToken), nil
	}
	if sc.HasCredentials() {
		return spotify.NewSpotifyClient(ctx, sc.ClientID, sc.ClientSecret)
	}
	return nil, errors.New("set SPOTIFY_TOKEN or SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET")
}

func run(cmd *cobra.Command, args []string) error {
	logs, err := logging.SetupFileOnly(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	if err != nil {
		return err
	}
	defer logs.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := newCatalog(ctx, cfg.Spotify)
	if err != nil {
		return err
	}
	tracks, err := loadTracks(ctx, catalog, trackSource{Playlist: playlistID, Album: albumID, Search: searchText}, 20)
	if err != nil {
		return err
	}
	if !player.AudioAvailable {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: audio playback is not available in this build")
	}

	pc := player.Config{
		Tracks:       tracks,
		NewEngine:    player.BeepEngineFactory(&http.Client{Timeout: 30 * time.Second}),
		TickInterval: cfg.Player.TickInterval(),
		OnIndexChange: func(i int) {
			log.WithField("index", i).Debug("track changed")
		},
	}
	if !noEnhance {
		r := player.NewRelayResolver(cfg.Relay.URL, cfg.Relay.Timeout())
		r.Limit = cfg.Relay.Limit
		pc.Resolver = r
	}
	c := player.New(pc)
	defer c.Close()

	out := cmd.OutOrStdout()
	printPlaylist(out, tracks)
	if autoStart {
		if err := c.Play(); err != nil {
			return err
		}
	}
	return loop(ctx, c, cmd.InOrStdin(), out, 250*time.Millisecond)
}
