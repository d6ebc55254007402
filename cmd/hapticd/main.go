// Command hapticd is the VRCH haptic router daemon: it discovers wearable
// devices over UDP multicast, listens for the avatar parameter stream over
// OSC, accepts a single bHaptics v3 TLS/WebSocket game connection, and
// drives every device's output from a single 100 Hz tick orchestrator.
//
// Usage:
//
//	hapticd [flags]
//
// Flags:
//
//	--config string            Path to a YAML config file
//	--tick_rate_hz int         Tick rate reported at startup; the orchestrator runs at a fixed 100 Hz (default 100)
//	--gamesession_addr string  bHaptics TLS/WebSocket listen address
//	--cert_file string         TLS certificate path (X.509, PEM)
//	--key_file string          TLS private key path (PKCS-8, PEM)
//	--avatar_osc_port int      Preferred avatar parameter OSC port
//	--merge float              Default Gaussian snap radius (meters)
//	--falloff float            Default Gaussian falloff distance (meters)
//	--cutoff float             Default Gaussian cutoff distance (meters)
//	--state_dir string         Directory for persisted state and prefabs
//	--log_dir string           Directory for protocol log files
//	--log_level string         Operational log level
//
// Every flag can also be set via a HAPTICD_-prefixed environment variable
// (e.g. HAPTICD_LOG_LEVEL=debug) or the --config YAML file; precedence is
// flags, then environment, then file, then built-in defaults. Nothing is
// hot-reloaded — a restart picks up any change.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/VRC-Haptics/VRCH-Server-sub000/cmd/hapticd/interactive"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/avatar"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/device"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/event"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/gamesession"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/haptic"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/oscquery"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/orchestrator"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/osc"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/paramcache"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/persistence"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/protolog"
)

func main() {
	cmd := &cobra.Command{
		Use:   "hapticd",
		Short: "VRCH haptic router daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}
	registerFlags(cmd.Flags())

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg Config) error {
	configureLogging(cfg.LogLevel)

	if err := os.MkdirAll(cfg.StateDir, 0o755); err != nil {
		return fmt.Errorf("hapticd: create state dir: %w", err)
	}
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return fmt.Errorf("hapticd: create log dir: %w", err)
	}

	protoLog, closeProtoLog, err := buildProtoLog(cfg)
	if err != nil {
		return err
	}
	defer closeProtoLog()

	store := persistence.NewFileStore(filepath.Join(cfg.StateDir, "state.json"))
	if err := store.Load(); err != nil {
		log.Warn().Err(err).Msg("hapticd: starting with an empty persisted store")
	}

	tlsConfig, err := gamesession.LoadTLSConfig(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return fmt.Errorf("hapticd: load TLS cert/key: %w", err)
	}

	globalMap := haptic.NewGlobalMap()
	algo := haptic.NewGaussian(haptic.GaussianConfig{
		Merge:   cfg.Merge,
		Falloff: cfg.Falloff,
		Cutoff:  cfg.Cutoff,
	})
	pool := event.NewPool(globalMap)

	registry := device.NewRegistry(store)
	discoveryListener, err := device.NewListener(registry)
	if err != nil {
		return fmt.Errorf("hapticd: start device discovery: %w", err)
	}

	avatarSession := avatar.NewSession([]string{cfg.StateDir})
	globalMap.RegisterRefresh(avatarSession.RefreshHook)

	avatarOSC, avatarPort, err := startAvatarOSCListener(cfg.AvatarOSCPort, avatarSession, protoLog)
	if err != nil {
		return fmt.Errorf("hapticd: start avatar OSC listener: %w", err)
	}

	oscqHost := oscquery.NewHost("hapticd")
	oscqHost.SetMethod(oscquery.Method{Address: avatar.AvatarChangePath, TypeTag: "s", Access: oscquery.AccessWriteOnly})
	advertiser := oscquery.NewAdvertiser()

	gameSession := gamesession.NewSession(nil)
	gameServer, err := gamesession.NewServer(gamesession.ServerConfig{
		Address:   cfg.GameSessionAddr,
		TLSConfig: tlsConfig,
		Map:       globalMap,
		Session:   gameSession,
		ProtoLog:  protoLog,
	})
	if err != nil {
		return fmt.Errorf("hapticd: start game session server: %w", err)
	}

	conn, err := net.ListenUDP("udp", &net.UDPAddr{})
	if err != nil {
		return fmt.Errorf("hapticd: bind orchestrator send socket: %w", err)
	}

	orch := orchestrator.New(orchestrator.Config{
		Map:           globalMap,
		Pool:          pool,
		Devices:       registry,
		GameSession:   gameSession,
		Algo:          algo,
		RespectEnable: true,
		Conn:          conn,
		ProtoLog:      protoLog,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	discoveryListener.Start(ctx)
	avatarOSC.Start(ctx)
	gameServer.Start(ctx)
	if err := advertiser.Start(oscquery.Endpoint{Name: "hapticd", HTTPPort: avatarPort, OSCPort: avatarPort}); err != nil {
		log.Warn().Err(err).Msg("hapticd: oscquery advertisement failed, continuing without it")
	}

	go orch.Run(ctx)

	log.Info().
		Int("tick_rate_hz", cfg.TickRateHz).
		Str("gamesession_addr", cfg.GameSessionAddr).
		Int("avatar_osc_port", avatarPort).
		Msg("hapticd: started")

	console := interactive.New(interactive.State{
		Map:     globalMap,
		Devices: registry,
		Avatar:  avatarSession,
		Game:    gameSession,
	})
	console.Run(ctx, cancel)
	cancel()

	advertiser.Stop()
	_ = gameServer.Stop()
	_ = avatarOSC.Stop()
	_ = discoveryListener.Stop()
	_ = conn.Close()
	_ = store.Save()

	return nil
}

func configureLogging(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

// buildProtoLog fans protocol events out to an on-disk CBOR log, a
// queryable SQLite table, and the operational console logger. The
// returned close func flushes and releases the file-backed loggers.
func buildProtoLog(cfg Config) (protolog.Logger, func(), error) {
	fileLogger, err := protolog.NewFileLogger(filepath.Join(cfg.LogDir, "protocol.plog"))
	if err != nil {
		return nil, nil, fmt.Errorf("hapticd: open protocol file log: %w", err)
	}
	sqliteLogger, err := protolog.NewSQLiteLogger(filepath.Join(cfg.LogDir, "protocol.db"))
	if err != nil {
		fileLogger.Close()
		return nil, nil, fmt.Errorf("hapticd: open protocol sqlite log: %w", err)
	}
	console := protolog.NewZerologAdapter(log.Logger)

	multi := protolog.NewMultiLogger(fileLogger, sqliteLogger, console)
	closeFn := func() {
		fileLogger.Close()
		sqliteLogger.Close()
	}
	return multi, closeFn, nil
}

// startAvatarOSCListener binds the avatar parameter OSC listener on
// preferredPort, falling back to an ephemeral port if it's taken, per the
// companion-discovery behavior original_source/vrc/discovery.rs documents.
func startAvatarOSCListener(preferredPort int, session *avatar.Session, protoLog protolog.Logger) (*osc.Server, int, error) {
	handler := avatarMessageHandler(session)
	cfg := osc.ServerConfig{
		Address:   fmt.Sprintf("127.0.0.1:%d", preferredPort),
		ProtoLog:  protoLog,
		OnMessage: handler,
	}

	srv, err := osc.NewServer(cfg)
	if err != nil {
		cfg.Address = "127.0.0.1:0"
		srv, err = osc.NewServer(cfg)
		if err != nil {
			return nil, 0, err
		}
	}

	port := srv.LocalAddr().(*net.UDPAddr).Port
	return srv, port, nil
}

// avatarMessageHandler dispatches every message on the avatar OSC listener:
// the avatar-change signal updates the session's identity/prefab, and
// everything under /avatar/parameters/ feeds the parameter cache. No
// FilterPrefix is set on the listening server since both addresses must
// reach this one handler.
func avatarMessageHandler(session *avatar.Session) osc.Handler {
	return func(_ *net.UDPAddr, msg osc.Message) {
		if msg.Address == avatar.AvatarChangePath {
			if len(msg.Args) == 0 || msg.Args[0].Kind != osc.ArgString {
				return
			}
			avatarID := msg.Args[0].String
			author, name, version := resolvePrefabDescriptor(avatarID)
			session.OnAvatarChange(avatarID, author, name, version)
			return
		}

		if !hasAvatarParamPrefix(msg.Address) || len(msg.Args) == 0 {
			return
		}
		value, ok := toParamValue(msg.Args[0])
		if !ok {
			return
		}
		path := avatar.RemoveVersion(msg.Address)
		if err := session.OnParameter(path, value); err != nil {
			log.Debug().Err(err).Str("address", path).Msg("hapticd: avatar parameter rejected")
		}
	}
}

func hasAvatarParamPrefix(address string) bool {
	return len(address) >= len(avatar.AvatarParamPrefix) && address[:len(avatar.AvatarParamPrefix)] == avatar.AvatarParamPrefix
}

// resolvePrefabDescriptor is a placeholder until the companion OSCQuery
// tree for avatarID has actually been polled (oscquery.Discover + a tree
// fetch keyed by avatar ID); wiring that round trip needs a live VRChat
// companion endpoint to validate against, so for now no descriptor is
// ever resolved and every avatar starts in the Discovering state until a
// haptic prefab path is seen directly on the parameter stream.
func resolvePrefabDescriptor(avatarID string) (author, name string, version uint32) {
	return "", "", 0
}

func toParamValue(arg osc.Arg) (paramcache.Value, bool) {
	switch arg.Kind {
	case osc.ArgFloat:
		return paramcache.Float(arg.Float), true
	case osc.ArgInt:
		return paramcache.Int(arg.Int), true
	case osc.ArgDouble:
		return paramcache.Double(arg.Double), true
	case osc.ArgBool:
		return paramcache.Bool(arg.Bool), true
	default:
		return paramcache.Value{}, false
	}
}
