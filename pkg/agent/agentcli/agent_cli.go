package agentcli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/keypoll/keypoll-agent/pkg/agent"
	"github.com/keypoll/keypoll-agent/pkg/keycode"
	"github.com/keypoll/keypoll-agent/pkg/keystate"
	"github.com/spf13/cobra"
)

func Main(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	dir, err := os.UserConfigDir()
	if err != nil {
		return err
	}
	cmd := NewRootCmd(filepath.Join(dir, "keypoll"))
	cmd.SetArgs(args)
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	return cmd.ExecuteContext(ctx)
}

type agentProvider func() *agent.Agent

func NewRootCmd(configDir string) *cobra.Command {
	cfg := agent.Config{
		DataDir:       filepath.Join(configDir, "data"),
		RuntimeConfig: filepath.Join(configDir, "agent.yml"),
	}
	agentCmd := &cobra.Command{
		Use:   "keypoll-agent",
		Short: "Keypoll Agent",
		Long:  `The Keypoll Agent is a daemon that captures keyboard and mouse input and tracks per-key state.`,
	}
	var a *agent.Agent
	agentProvider := func() *agent.Agent {
		return a
	}
	agentCmd.PersistentFlags().StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "data directory")
	agentCmd.PersistentFlags().StringVar(&cfg.RuntimeConfig, "config", cfg.RuntimeConfig, "runtime config file")
	agentCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		var err error
		a, err = agent.NewAgent(cfg)
		return err
	}
	agentCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if a == nil {
			return nil
		}
		return a.Close()
	}
	agentCmd.AddCommand(NewRun(agentProvider))
	agentCmd.AddCommand(NewKeys())
	agentCmd.AddCommand(NewStats(agentProvider))
	agentCmd.AddCommand(NewWait(agentProvider))
	return agentCmd
}

func NewRun(agent agentProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the Keypoll Agent",
		Long:  `Run the capture daemon until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return agent().Run(cmd.Context())
		},
	}
}

func NewKeys() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List key names",
		Long:  `List every key name the registry tracks.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, key := range keycode.All() {
				fmt.Fprintln(cmd.OutOrStdout(), key)
			}
			return nil
		},
	}
}

func NewStats(agent agentProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show key usage statistics",
		Long:  `Show per-key usage statistics persisted by the daemon.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := agent().Stats().List()
			if err != nil {
				return err
			}
			sort.Slice(records, func(i, j int) bool {
				return records[i].Presses > records[j].Presses
			})
			jsonB, err := json.MarshalIndent(records, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(jsonB))
			return nil
		},
	}
}

func NewWait(agent agentProvider) *cobra.Command {
	var (
		timeout  time.Duration
		stateStr string
	)
	cmd := &cobra.Command{
		Use:   "wait <key>",
		Short: "Wait for a key event",
		Long:  `Block until the given key reaches the requested state or the timeout expires.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := keycode.FromName(args[0])
			if !key.Valid() {
				return fmt.Errorf("unknown key: %s", args[0])
			}
			var state keystate.KeyState
			switch stateStr {
			case "any":
				state = keystate.StateNone
			case "down":
				state = keystate.StateDown
			case "up":
				state = keystate.StateUp
			default:
				return fmt.Errorf("invalid state: %s", stateStr)
			}

			engine := agent().KeyState()
			ctx, cancel := context.WithCancel(cmd.Context())
			runErr := make(chan error, 1)
			go func() {
				runErr <- engine.Run(ctx)
			}()
			select {
			case <-engine.Ready():
			case err := <-runErr:
				cancel()
				return err
			}

			ok, err := engine.WaitForEvent(ctx, key, state, timeout)
			cancel()
			<-runErr
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("timed out waiting for %s", key)
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", -1, "give up after this duration (negative waits forever)")
	cmd.Flags().StringVar(&stateStr, "state", "down", "state to wait for (down, up, any)")
	return cmd
}
