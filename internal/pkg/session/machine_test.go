package session

import (
	"testing"

	"robonav/internal/pkg/message"
	"robonav/internal/pkg/nav"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func server(kinds ...message.ServerKind) []message.Server {
	msgs := make([]message.Server, len(kinds))
	for i, k := range kinds {
		msgs[i] = message.NewServer(k)
	}
	return msgs
}

// feed parses each body against the current state and applies it.
func feed(t *testing.T, s State, bodies ...string) (State, []message.Server) {
	t.Helper()
	var replies []message.Server
	for _, body := range bodies {
		msg, err := message.Parse(body, s.Expect())
		require.NoError(t, err, body)
		r, err := Next(s, msg)
		require.NoError(t, err, body)
		replies = append(replies, r.Replies...)
		s = r.State
	}
	return s, replies
}

func TestLoginAndRetrieveAtOrigin(t *testing.T) {
	s := Initial()

	r, err := Next(s, message.Username{Name: "Mnau!"})
	require.NoError(t, err)
	require.Equal(t, server(message.KeyRequest), r.Replies)
	require.Equal(t, AwaitingKeyIndex{Username: "Mnau!"}, r.State)

	r, err = Next(r.State, message.KeyIndex{Index: 2})
	require.NoError(t, err)
	require.Equal(t, []message.Server{message.NewConfirm(59573)}, r.Replies)
	require.Equal(t, AwaitingConfirmation{Expected: 54387}, r.State)

	r, err = Next(r.State, message.Confirmation{Hash: 54387})
	require.NoError(t, err)
	require.Equal(t, server(message.OK, message.TurnLeft), r.Replies)
	require.Equal(t, Navigating{Nav: nav.Start()}, r.State)

	// first orientation probe
	r, err = Next(r.State, message.Position{X: 1, Y: 0})
	require.NoError(t, err)
	require.Equal(t, server(message.Move), r.Replies)

	r, err = Next(r.State, message.Position{X: 0, Y: 0})
	require.NoError(t, err)
	require.Equal(t, server(message.GetMessage), r.Replies)
	require.Equal(t, Extracting{}, r.State)

	r, err = Next(r.State, message.Secret{Text: "Tajny vzkaz."})
	require.NoError(t, err)
	require.Equal(t, server(message.Logout), r.Replies)
	require.True(t, r.Done)
	require.Equal(t, "Tajny vzkaz.", r.Secret)
}

func TestInvalidKeyIndex(t *testing.T) {
	for _, idx := range []int{-1, 5, 999} {
		_, err := Next(AwaitingKeyIndex{Username: "robot"}, message.KeyIndex{Index: idx})
		require.True(t, errors.Is(err, ErrInvalidKeyIndex), idx)
	}
}

func TestHashMismatch(t *testing.T) {
	_, err := Next(AwaitingConfirmation{Expected: 54387}, message.Confirmation{Hash: 54386})
	var mismatch *HashMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, uint32(54387), mismatch.Expected)
	assert.Equal(t, 54386, mismatch.Actual)

	_, err = Next(AwaitingConfirmation{Expected: 1}, message.Confirmation{Hash: -1})
	require.True(t, errors.As(err, &mismatch))
}

func TestUnexpectedResponse(t *testing.T) {
	tests := []struct {
		state State
		msg   message.Client
	}{
		{AwaitingUsername{}, message.KeyIndex{Index: 1}},
		{AwaitingKeyIndex{Username: "a"}, message.Username{Name: "a"}},
		{AwaitingConfirmation{Expected: 1}, message.Position{}},
		{Navigating{Nav: nav.Start()}, message.Secret{Text: "x"}},
		{Extracting{}, message.Position{}},
	}
	for _, tt := range tests {
		_, err := Next(tt.state, tt.msg)
		require.True(t, errors.Is(err, ErrUnexpectedResponse), "%s with %s", tt.state.Name(), tt.msg.Kind())
	}
}

func TestOrientingBlockedTwiceNeverAdvances(t *testing.T) {
	s, replies := feed(t, Navigating{Nav: nav.Start()}, "OK 2 0", "OK 2 0")
	require.Equal(t, server(message.Move, message.TurnRight), replies)
	require.Equal(t, Navigating{Nav: nav.Start()}, s)
}

func TestRechargeIsTransparent(t *testing.T) {
	states := []State{
		AwaitingUsername{},
		AwaitingKeyIndex{Username: "robot"},
		AwaitingConfirmation{Expected: 123},
		Navigating{Nav: nav.Start()},
		Navigating{Nav: nav.State{Phase: nav.Routing, Position: nav.Position{X: 3, Y: 3}, Heading: nav.West, Pending: []nav.Action{nav.Move}}},
		Navigating{Nav: nav.State{Phase: nav.Tracking, Position: nav.Position{X: 0, Y: 4}, Heading: nav.South}},
		Extracting{},
	}
	for _, before := range states {
		r, err := Next(before, message.Recharging{})
		require.NoError(t, err)
		require.Empty(t, r.Replies)
		require.Equal(t, TimeoutRefilling, r.Timeout)
		require.Equal(t, Charging{Previous: before}, r.State)
		require.Equal(t, 12, r.State.MaxLen())

		r, err = Next(r.State, message.FullPower{})
		require.NoError(t, err)
		require.Empty(t, r.Replies)
		require.Equal(t, TimeoutNormal, r.Timeout)
		require.Equal(t, before, r.State, before.Name())
	}
}

func TestRechargeMidNavigationResumesSameCommand(t *testing.T) {
	base, _ := feed(t, Navigating{Nav: nav.Start()}, "OK 4 3")
	_, direct := feed(t, base, "OK 3 3")

	s, _ := feed(t, base, "RECHARGING", "FULL POWER")
	_, resumed := feed(t, s, "OK 3 3")
	require.Equal(t, direct, resumed)
}

func TestChargingViolations(t *testing.T) {
	charging := Charging{Previous: Navigating{Nav: nav.Start()}}

	_, err := Next(charging, message.Recharging{})
	require.True(t, errors.Is(err, ErrChargingInCharging))
	require.True(t, IsChargingViolation(err))

	_, err = Next(Navigating{Nav: nav.Start()}, message.FullPower{})
	require.True(t, errors.Is(err, ErrChargingFullInvalidState))
	require.True(t, IsChargingViolation(err))

	_, err = Next(charging, message.Position{X: 1, Y: 1})
	require.True(t, errors.Is(err, ErrMessageWhileCharging))
	require.True(t, IsChargingViolation(err))

	require.False(t, IsChargingViolation(ErrUnexpectedResponse))
}

func TestChargingRejectsAnyBody(t *testing.T) {
	suspended := []State{
		AwaitingKeyIndex{Username: "a"},
		AwaitingConfirmation{Expected: 54387},
		Navigating{Nav: nav.Start()},
		Extracting{},
	}
	for _, prev := range suspended {
		charging := Charging{Previous: prev}
		require.Equal(t, message.KindCharging, charging.Expect())
		for _, body := range []string{"3", "OK 1 2", "hello", ""} {
			msg, err := message.Parse(body, charging.Expect())
			require.NoError(t, err, body)
			require.Equal(t, message.Stray{Body: body}, msg)
			_, err = Next(charging, msg)
			require.True(t, errors.Is(err, ErrMessageWhileCharging), "%q in %s", body, prev.Name())
		}
	}
}

func TestMaxLen(t *testing.T) {
	assert.Equal(t, 20, AwaitingUsername{}.MaxLen())
	assert.Equal(t, 5, AwaitingKeyIndex{}.MaxLen())
	assert.Equal(t, 7, AwaitingConfirmation{}.MaxLen())
	assert.Equal(t, 12, Navigating{}.MaxLen())
	assert.Equal(t, 100, Extracting{}.MaxLen())
	assert.Equal(t, 12, Charging{Previous: Extracting{}}.MaxLen())
}

func TestCommand(t *testing.T) {
	assert.Equal(t, message.NewServer(message.Move), Command(nav.Move))
	assert.Equal(t, message.NewServer(message.TurnLeft), Command(nav.TurnLeft))
	assert.Equal(t, message.NewServer(message.TurnRight), Command(nav.TurnRight))
}
