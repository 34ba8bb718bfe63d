package gate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"convertbot/internal/models"
)

type fakeChannels struct {
	channels []models.Channel
	err      error
}

func (f fakeChannels) ListChannels(ctx context.Context) ([]models.Channel, error) {
	return f.channels, f.err
}

// fakeMembers answers by chat id; missing chats return an error
type fakeMembers struct {
	statuses map[string]string
	calls    []string
}

func (f *fakeMembers) MemberStatus(ctx context.Context, chatID string, userID int64) (string, error) {
	f.calls = append(f.calls, chatID)
	status, ok := f.statuses[chatID]
	if !ok {
		return "", errors.New("chat not found")
	}
	return status, nil
}

var registry = []models.Channel{
	{ID: 1, Name: "ChannelA", ChatID: "100", Link: "https://t.me/a"},
	{ID: 2, Name: "ChannelB", ChatID: "200", Link: "https://t.me/b"},
}

func TestClassify(t *testing.T) {
	tests := map[string]Membership{
		"creator":       Member,
		"administrator": Member,
		"member":        Member,
		"restricted":    NotMember,
		"left":          NotMember,
		"kicked":        NotMember,
		"":              NotMember,
	}
	for status, want := range tests {
		assert.Equal(t, want, Classify(status), status)
	}
}

func TestEvaluate_MemberOfOnlyOne(t *testing.T) {
	members := &fakeMembers{statuses: map[string]string{"100": "member", "200": "left"}}
	g := New(fakeChannels{channels: registry}, members, zap.NewNop())

	result, err := g.Evaluate(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, result.Passed)
	require.Len(t, result.Checks, 2)
	assert.Equal(t, "ChannelA", result.Checks[0].Channel.Name)
	assert.True(t, result.Checks[0].Subscribed())
	assert.Equal(t, "ChannelB", result.Checks[1].Channel.Name)
	assert.False(t, result.Checks[1].Subscribed())
}

func TestEvaluate_AllSubscribed(t *testing.T) {
	members := &fakeMembers{statuses: map[string]string{"100": "creator", "200": "administrator"}}
	g := New(fakeChannels{channels: registry}, members, zap.NewNop())

	result, err := g.Evaluate(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, result.Passed)
}

func TestEvaluate_LookupErrorFailsClosedAndContinues(t *testing.T) {
	// "100" is unknown to the transport
	members := &fakeMembers{statuses: map[string]string{"200": "member"}}
	g := New(fakeChannels{channels: registry}, members, zap.NewNop())

	result, err := g.Evaluate(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Equal(t, LookupFailed, result.Checks[0].Membership)
	assert.Equal(t, Member, result.Checks[1].Membership)
	assert.Equal(t, []string{"100", "200"}, members.calls, "every channel is checked")
}

func TestEvaluate_EmptyRegistryPasses(t *testing.T) {
	g := New(fakeChannels{}, &fakeMembers{}, zap.NewNop())

	result, err := g.Evaluate(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Empty(t, result.Checks)
}

func TestEvaluate_StorageError(t *testing.T) {
	g := New(fakeChannels{err: errors.New("disk gone")}, &fakeMembers{}, zap.NewNop())

	_, err := g.Evaluate(context.Background(), 7)
	assert.Error(t, err)
}

func TestEvaluateAt(t *testing.T) {
	members := &fakeMembers{statuses: map[string]string{"100": "left", "200": "member"}}
	g := New(fakeChannels{channels: registry}, members, zap.NewNop())
	ctx := context.Background()

	result, err := g.EvaluateAt(ctx, 7, 1)
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Equal(t, []string{"200"}, members.calls, "only the indexed channel is checked")

	result, err = g.EvaluateAt(ctx, 7, 0)
	require.NoError(t, err)
	assert.False(t, result.Passed)

	result, err = g.EvaluateAt(ctx, 7, 5)
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Empty(t, result.Checks)
}
