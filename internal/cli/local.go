package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rocketscienceinc/impostor-backend/internal/entity"
	"github.com/rocketscienceinc/impostor-backend/internal/impostor"
)

const clearScreen = "\033[H\033[2J"

var ErrInputClosed = errors.New("input closed before the round finished")

// LocalGame renders one Machine on a terminal shared by the whole table.
type LocalGame struct {
	logger  *slog.Logger
	machine *impostor.Machine
	in      *bufio.Scanner
	out     io.Writer
}

func NewLocalGame(logger *slog.Logger, machine *impostor.Machine, in io.Reader, out io.Writer) *LocalGame {
	return &LocalGame{
		logger:  logger.With("component", "local"),
		machine: machine,
		in:      bufio.NewScanner(in),
		out:     out,
	}
}

// Run plays rounds until the table quits, the input ends or ctx is cancelled.
func (that *LocalGame) Run(ctx context.Context) error {
	log := that.logger.With("method", "Run")

	if err := that.machine.Start(); err != nil {
		return fmt.Errorf("failed to start match: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		switch that.machine.Phase() {
		case entity.PhasePassDevice:
			err = that.passDevice()
		case entity.PhaseReveal:
			err = that.reveal()
		case entity.PhaseDebate:
			var again bool
			again, err = that.debate()
			if err == nil && !again {
				return nil
			}
		default:
			return fmt.Errorf("unexpected phase %s", that.machine.Phase())
		}

		if err != nil {
			log.Debug("round interrupted", "phase", that.machine.Phase(), "error", err)
			return err
		}
	}
}

func (that *LocalGame) passDevice() error {
	player, err := that.machine.CurrentPlayer()
	if err != nil {
		return err
	}

	that.printf("%sPass the device to %s (%d/%d).\n", clearScreen, player.Name,
		that.machine.TurnIndex()+1, len(that.machine.Roster()))
	that.printf("%s, press Enter when only you can see the screen.", player.Name)

	if _, err = that.readLine(); err != nil {
		return err
	}

	return that.machine.Acknowledge()
}

func (that *LocalGame) reveal() error {
	that.printf("\nPress Enter to reveal your card.")

	if _, err := that.readLine(); err != nil {
		return err
	}

	card, err := that.machine.Reveal()
	if err != nil {
		return err
	}

	that.printf("\nCategory: %s\n", card.Category)
	if card.Role.IsImpostor() {
		that.printf("You are the IMPOSTOR. Your word: %s\n", card.Word)
	} else {
		that.printf("Your word: %s\n", card.Word)
	}

	that.printf("\nMemorize it, then press Enter to hide it.")
	if _, err = that.readLine(); err != nil {
		return err
	}

	that.printf("%s", clearScreen)

	return that.machine.Next()
}

// debate reports whether the table wants another round.
func (that *LocalGame) debate() (bool, error) {
	category, err := that.machine.Category()
	if err != nil {
		return false, err
	}

	that.printf("%sEveryone has seen their card. Debate! Category: %s\n", clearScreen, category)

	for {
		that.printf("\n[w] show the word  [r] play again  [q] quit > ")

		line, err := that.readLine()
		if errors.Is(err, ErrInputClosed) {
			return false, nil
		}
		if err != nil {
			return false, err
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "w":
			word, wordErr := that.machine.SecretWord()
			if wordErr != nil {
				return false, wordErr
			}
			that.printf("The word was: %s\n", word)
		case "r":
			if err = that.machine.Restart(); err != nil {
				return false, fmt.Errorf("failed to restart match: %w", err)
			}
			return true, nil
		case "q":
			return false, nil
		default:
			that.printf("Unknown command %q.\n", line)
		}
	}
}

func (that *LocalGame) readLine() (string, error) {
	if !that.in.Scan() {
		if err := that.in.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}

		return "", ErrInputClosed
	}

	return that.in.Text(), nil
}

func (that *LocalGame) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(that.out, format, args...); err != nil {
		that.logger.Warn("failed to write output", "error", err)
	}
}
