// Package gate decides whether a user is subscribed to every channel in
// the registry.
package gate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"convertbot/internal/models"
)

// Membership is the outcome of one channel check
type Membership int

const (
	NotMember Membership = iota
	Member
	LookupFailed
)

func (m Membership) String() string {
	switch m {
	case Member:
		return "member"
	case LookupFailed:
		return "lookup_failed"
	default:
		return "not_member"
	}
}

// MemberStatuses that count as subscribed
var memberStatuses = map[string]bool{
	"member":        true,
	"administrator": true,
	"creator":       true,
}

// Classify maps a raw chat member status to a Membership
func Classify(status string) Membership {
	if memberStatuses[status] {
		return Member
	}
	return NotMember
}

// ChannelLister lists the registry in order
type ChannelLister interface {
	ListChannels(ctx context.Context) ([]models.Channel, error)
}

// MembershipChecker looks up a user's status in one chat
type MembershipChecker interface {
	MemberStatus(ctx context.Context, chatID string, userID int64) (string, error)
}

// Check is the verdict for one channel
type Check struct {
	Channel    models.Channel
	Membership Membership
}

// Subscribed reports whether this channel is satisfied
func (c Check) Subscribed() bool {
	return c.Membership == Member
}

// Result is the verdict over the checked channels, in registry order
type Result struct {
	Checks []Check
	Passed bool
}

type Gate struct {
	channels ChannelLister
	members  MembershipChecker
	logger   *zap.Logger
}

func New(channels ChannelLister, members MembershipChecker, logger *zap.Logger) *Gate {
	return &Gate{channels: channels, members: members, logger: logger}
}

// Evaluate checks every registry channel. A failed lookup counts as not
// subscribed and does not stop the remaining checks.
func (g *Gate) Evaluate(ctx context.Context, userID int64) (Result, error) {
	channels, err := g.channels.ListChannels(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list channels: %w", err)
	}

	result := Result{Checks: make([]Check, 0, len(channels)), Passed: true}
	for _, channel := range channels {
		check := g.check(ctx, channel, userID)
		if !check.Subscribed() {
			result.Passed = false
		}
		result.Checks = append(result.Checks, check)
	}
	return result, nil
}

// EvaluateAt checks only the channel at the given registry position.
// An out-of-range index fails.
func (g *Gate) EvaluateAt(ctx context.Context, userID int64, index int) (Result, error) {
	channels, err := g.channels.ListChannels(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list channels: %w", err)
	}

	if index < 0 || index >= len(channels) {
		g.logger.Error("Invalid gate channel index",
			zap.Int("index", index),
			zap.Int("channels", len(channels)),
		)
		return Result{Passed: false}, nil
	}

	check := g.check(ctx, channels[index], userID)
	return Result{Checks: []Check{check}, Passed: check.Subscribed()}, nil
}

func (g *Gate) check(ctx context.Context, channel models.Channel, userID int64) Check {
	status, err := g.members.MemberStatus(ctx, channel.ChatID, userID)
	if err != nil {
		g.logger.Error("Failed to check subscription",
			zap.Error(err),
			zap.String("channel_id", channel.ChatID),
			zap.Int64("user_id", userID),
		)
		return Check{Channel: channel, Membership: LookupFailed}
	}
	return Check{Channel: channel, Membership: Classify(status)}
}
