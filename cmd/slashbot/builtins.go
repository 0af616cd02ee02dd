package main

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"

	"github.com/morezero/slashbot/pkg/registry"
	"github.com/morezero/slashbot/pkg/response"
	"github.com/morezero/slashbot/pkg/slashbot"
)

const maxSides = 1000

// registerBuiltins adds the demo commands every deployment ships with.
func registerBuiltins(b *slashbot.Bot) error {
	builtins := []struct {
		signature   string
		description string
		handler     registry.HandlerFunc
	}{
		{"echo text", "repeat text to the channel", echo},
		{"whoami", "show who you are to the bot", whoami},
		{"roll sides", "roll a die with the given number of sides", roll(rand.Intn)},
	}
	for _, c := range builtins {
		if err := b.AddCommand(c.signature, c.description, c.handler); err != nil {
			return fmt.Errorf("register %q: %w", c.signature, err)
		}
	}
	return nil
}

func echo(_ context.Context, inv registry.InvocationContext) (response.Response, error) {
	return response.InChannelText(inv.Arg(0)), nil
}

func whoami(_ context.Context, inv registry.InvocationContext) (response.Response, error) {
	return response.EphemeralText(fmt.Sprintf("You are %s (%s) in %s", inv.RequesterName, inv.RequesterID, inv.ChannelID)), nil
}

// roll takes intn so tests can fix the outcome.
func roll(intn func(n int) int) registry.HandlerFunc {
	return func(_ context.Context, inv registry.InvocationContext) (response.Response, error) {
		sides, err := strconv.Atoi(inv.Arg(0))
		if err != nil || sides < 2 || sides > maxSides {
			return response.EphemeralText(fmt.Sprintf("sides must be a number between 2 and %d", maxSides)), nil
		}
		return response.InChannelText(fmt.Sprintf("%s rolled %d (d%d)", inv.RequesterName, intn(sides)+1, sides)), nil
	}
}
