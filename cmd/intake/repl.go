package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/vozlegal/intake/internal/agent"
	"github.com/vozlegal/intake/internal/service"
	"github.com/vozlegal/intake/internal/session"

	"github.com/google/shlex"
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive triage shell",
	Long:  `Runs intake turns from the terminal. Plain text is treated as a caller message; slash commands inspect and control the session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, err := buildStack(cfg)
		if err != nil {
			return err
		}
		defer stack.Close()

		r := &repl{
			intake: stack.intake,
			reader: bufio.NewReader(os.Stdin),
			userID: fmt.Sprintf("repl-%d", time.Now().Unix()),
		}
		return r.run(cmd.Context())
	},
}

type repl struct {
	intake    *service.Intake
	reader    *bufio.Reader
	userID    string
	sessionID string
}

func (r *repl) run(ctx context.Context) error {
	fmt.Println("Intake triage shell. Type a message, or /help for commands.")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		fmt.Print("> ")
		line, err := r.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			done, err := r.command(ctx, line)
			if err != nil {
				fmt.Println("error:", err)
			}
			if done {
				return nil
			}
			continue
		}

		r.turn(ctx, line)
	}
}

// command handles one slash command. Returns true when the shell should
// exit.
func (r *repl) command(ctx context.Context, line string) (bool, error) {
	parts, err := shlex.Split(strings.TrimPrefix(line, "/"))
	if err != nil {
		return false, err
	}
	if len(parts) == 0 {
		return false, nil
	}

	switch parts[0] {
	case "exit", "quit":
		return true, nil

	case "help":
		fmt.Println("/end            end the current conversation")
		fmt.Println("/session        show the current session")
		fmt.Println("/as <agent> <message>  send a message preferring an agent")
		fmt.Println("/exit           quit")
		return false, nil

	case "end":
		if r.sessionID == "" {
			fmt.Println("no active session")
			return false, nil
		}
		r.intake.EndSession(ctx, r.sessionID)
		r.sessionID = ""
		fmt.Println("session ended")
		return false, nil

	case "session":
		if r.sessionID == "" {
			fmt.Println("no active session")
			return false, nil
		}
		sess, err := r.intake.Sessions().Get(r.sessionID)
		if err != nil {
			return false, err
		}
		fmt.Printf("id=%s agent=%s language=%s transfers=%d\n",
			sess.ID, sess.AgentType, sess.Context.Language, len(sess.Context.TransferHistory))
		return false, nil

	case "as":
		if len(parts) < 2 {
			return false, fmt.Errorf("usage: /as <agent> <message>")
		}
		r.turnPreferred(ctx, strings.Join(parts[2:], " "), parts[1])
		return false, nil

	default:
		return false, fmt.Errorf("unknown command: /%s", parts[0])
	}
}

func (r *repl) turn(ctx context.Context, input string) {
	r.turnPreferred(ctx, input, "")
}

func (r *repl) turnPreferred(ctx context.Context, input, preferred string) {
	if input == "" {
		fmt.Println("nothing to send")
		return
	}

	result, err := r.intake.HandleTurn(ctx, service.TurnRequest{
		SessionID: r.sessionID,
		UserID:    r.userID,
		Channel:   session.ChannelChat,
		Input:     input,
		Preferred: agent.Type(preferred),
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	r.sessionID = result.Session.ID
	if result.Transferred {
		fmt.Printf("[transferred to %s]\n", result.Agent)
	}
	if result.Signals.IsEmergency {
		fmt.Println("[emergency signals detected]")
	}
	fmt.Printf("(%s) %s\n", result.Agent, result.Reply)
}

func init() {
	rootCmd.AddCommand(replCmd)
}
