// Package interactive provides the hapticd operator console: a readline
// prompt for inspecting live router state (devices, avatar session, game
// connection) without needing to tail logs.
package interactive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/avatar"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/device"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/gamesession"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/haptic"
)

// State is the live router state the console reports on. The console only
// reads it, except that "map on|off" sets Map.GlobalEnable.
type State struct {
	Map     *haptic.GlobalMap
	Devices *device.Registry
	Avatar  *avatar.Session
	Game    *gamesession.Session
}

// Console runs the operator's interactive command loop.
type Console struct {
	state State
}

// New returns a Console over state.
func New(state State) *Console {
	return &Console{state: state}
}

// Run starts the readline prompt and blocks until ctx is cancelled or the
// operator types "quit"/"exit", at which point it calls cancel and
// returns. Safe to skip entirely in non-interactive deployments by simply
// not calling Run.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	rl, err := readline.NewEx(&readline.Config{Prompt: "hapticd> "})
	if err != nil {
		return
	}
	defer rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := rl.Readline()
		switch {
		case err == readline.ErrInterrupt:
			if len(line) == 0 {
				cancel()
				return
			}
			continue
		case err == io.EOF:
			cancel()
			return
		case err != nil:
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := strings.ToLower(fields[0]), fields[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()
		case "devices", "d":
			c.cmdDevices()
		case "avatar", "a":
			c.cmdAvatar()
		case "game", "g":
			c.cmdGame()
		case "map", "m":
			c.cmdMap(args)
		case "quit", "exit", "q":
			fmt.Println("Exiting...")
			cancel()
			return
		default:
			fmt.Printf("Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (c *Console) printHelp() {
	fmt.Print(`
hapticd console commands:
  devices, d          List known devices and their lifecycle state
  avatar, a           Show the current avatar session state
  game, g             Show the connected game session's identity
  map, m [on|off]     Show or set the global enable gate
  quit, exit, q        Shut down hapticd
`)
}

func (c *Console) cmdDevices() {
	devices := c.state.Devices.Snapshot()
	if len(devices) == 0 {
		fmt.Println("no devices known")
		return
	}
	for _, d := range devices {
		fmt.Printf("  %s (%s) alive=%v\n", d.ID, d.Name, d.Alive())
	}
}

func (c *Console) cmdAvatar() {
	fmt.Printf("  avatar_id=%q state=%d\n", c.state.Avatar.AvatarID(), c.state.Avatar.State())
	if err := c.state.Avatar.LastPrefabError(); err != nil {
		fmt.Printf("  prefab error: %v\n", err)
	}
}

func (c *Console) cmdGame() {
	fmt.Printf("  connected=%v\n", c.state.Game.Connected())
}

func (c *Console) cmdMap(args []string) {
	if len(args) == 0 {
		fmt.Printf("  global_enable=%v global_offset=%v\n", c.state.Map.GlobalEnable, c.state.Map.GlobalOffset)
		return
	}
	switch strings.ToLower(args[0]) {
	case "on":
		c.state.Map.GlobalEnable = true
	case "off":
		c.state.Map.GlobalEnable = false
	default:
		fmt.Println("usage: map [on|off]")
	}
}
