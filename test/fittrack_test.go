//go:build integration_test

package test

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/2beens/fittrack/internal/appstate"
	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/daylog"
	"github.com/2beens/fittrack/internal/dashboard"
	"github.com/2beens/fittrack/internal/gymstats/workouts"
	"github.com/2beens/fittrack/internal/planbuilder"
	"github.com/2beens/fittrack/internal/profile"
	"github.com/2beens/fittrack/internal/realtime"
	"github.com/2beens/fittrack/internal/sdk"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "integration-pass-1"

func floatPtr(f float64) *float64 {
	return &f
}

func (s *IntegrationTestSuite) signedUpClient(ctx context.Context) (*sdk.Client, *auth.Session) {
	client := s.newClient()
	session, err := client.Auth().SignUp(ctx, gofakeit.Email(), testPassword, gofakeit.Name())
	require.NoError(s.T(), err)
	return client, session
}

func (s *IntegrationTestSuite) TestAuthAndProfile() {
	ctx := context.Background()
	t := s.T()

	email := gofakeit.Email()
	client := s.newClient()
	session := appstate.NewSession(client.Auth())
	require.NoError(t, session.Mount(ctx))
	defer session.Unmount()
	assert.False(t, session.SignedIn())

	var events []auth.Event
	session.Subscribe(func(c appstate.SessionChange) {
		events = append(events, c.Event)
	})

	require.NoError(t, session.SignUp(ctx, email, testPassword, "Integration Lifter"))
	require.True(t, session.SignedIn())
	assert.Equal(t, email, session.Identity().Email)
	assert.False(t, session.Identity().OnboardingCompleted)

	require.NoError(t, session.SignOut(ctx))
	assert.False(t, session.SignedIn())

	err := session.SignIn(ctx, email, "wrong-password")
	require.Error(t, err)
	var apiErr *sdk.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

	require.NoError(t, session.SignIn(ctx, email, testPassword))
	assert.Equal(t, []auth.Event{auth.EventSignedIn, auth.EventSignedOut, auth.EventSignedIn}, events)

	identity, err := client.Auth().GetUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, identity.LastLogonTime)

	prof := appstate.NewProfile(client)
	require.NoError(t, prof.Mount(ctx))
	assert.False(t, prof.Stored())

	prof.Update(func(p *profile.Profile) {
		p.FullName = "Integration Lifter"
		p.Goals = p.Goals.Add("strength").WithOther("run a marathon")
	})
	require.NoError(t, prof.Save(ctx))

	stored, err := client.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Integration Lifter", stored.FullName)
	assert.True(t, stored.Goals.Has(profile.GoalOther))

	identity, err = client.Auth().GetUser(ctx)
	require.NoError(t, err)
	assert.True(t, identity.OnboardingCompleted)
}

func (s *IntegrationTestSuite) TestDailyLog() {
	ctx := context.Background()
	t := s.T()
	client, _ := s.signedUpClient(ctx)

	day := time.Date(2024, 4, 10, 19, 30, 0, 0, time.UTC)
	log := daylog.New(client, time.UTC)

	found, err := log.LoadForDate(ctx, day)
	require.NoError(t, err)
	assert.False(t, found)

	ref := log.AddExercise("Bench Press")
	pendingSet := log.Exercises()[0].Sets[0].Ref
	require.NoError(t, log.EditSet(ctx, pendingSet, workouts.SetFieldWeight, floatPtr(100)))
	require.NoError(t, log.EditSet(ctx, pendingSet, workouts.SetFieldReps, floatPtr(5)))
	assert.Equal(t, 0, log.StoredCount())

	require.NoError(t, log.UploadExercise(ctx, ref))
	assert.Equal(t, 1, log.StoredCount())
	exercise := log.Exercises()[0]
	require.Len(t, exercise.Sets, 1)

	require.NoError(t, log.BeginAddSet(exercise.Ref))
	require.NoError(t, log.SetTempValues(daylog.TempValues{Weight: 100, Reps: 4, RPE: floatPtr(9)}))
	require.NoError(t, log.CommitAddSet(ctx))

	firstSet := log.Exercises()[0].Sets[0]
	require.NoError(t, log.EditSet(ctx, firstSet.Ref, workouts.SetFieldWeight, floatPtr(105)))
	edited := log.Exercises()[0].Sets[0]
	assert.Equal(t, firstSet.Ref, edited.Ref)
	assert.Equal(t, 105.0, edited.Weight)
	assert.Equal(t, 5, edited.Reps)

	reloaded := daylog.New(client, time.UTC)
	found, err = reloaded.LoadForDate(ctx, day)
	require.NoError(t, err)
	require.True(t, found)
	exercises := reloaded.Exercises()
	require.Len(t, exercises, 1)
	require.Len(t, exercises[0].Sets, 2)
	assert.Equal(t, 105.0, exercises[0].Sets[0].Weight)
	assert.Equal(t, floatPtr(9), exercises[0].Sets[1].RPE)

	require.NoError(t, reloaded.DeleteExercise(ctx, exercises[0].Ref))
	found, err = daylog.New(client, time.UTC).LoadForDate(ctx, day)
	require.NoError(t, err)
	assert.False(t, found)
}

func (s *IntegrationTestSuite) TestPlanBuilder() {
	ctx := context.Background()
	t := s.T()
	client, _ := s.signedUpClient(ctx)

	builder := planbuilder.New(client, "Full Body")
	require.NoError(t, builder.Load(ctx))
	assert.False(t, builder.HasStoredWorkout())

	require.NoError(t, builder.EditRow(0, 0, planbuilder.FieldExerciseName, "Back Squat"))
	require.NoError(t, builder.EditRow(0, 0, planbuilder.FieldSets, "5"))
	_, err := builder.AddRow(0)
	require.NoError(t, err)
	require.NoError(t, builder.EditRow(0, 1, planbuilder.FieldExerciseName, "Bench Press"))
	require.NoError(t, builder.EditRow(0, 1, planbuilder.FieldWeight, "80"))
	_, err = builder.AddRow(0)
	require.NoError(t, err)

	result := builder.SaveAll(ctx, 0)
	require.NoError(t, result.Err)
	assert.True(t, result.Success())
	assert.Equal(t, 2, result.Saved)

	require.NoError(t, builder.EditRow(3, 0, planbuilder.FieldExerciseName, "Deadlift"))
	require.NoError(t, builder.SaveRow(ctx, 3, 0))
	assert.Equal(t, 3, builder.StoredCount())

	reloaded := planbuilder.New(client, "ignored")
	require.NoError(t, reloaded.Load(ctx))
	assert.True(t, reloaded.HasStoredWorkout())
	assert.Equal(t, "Full Body", reloaded.WorkoutName())
	monday, err := reloaded.Rows(0)
	require.NoError(t, err)
	require.Len(t, monday, 2)
	names := []string{monday[0].ExerciseName, monday[1].ExerciseName}
	assert.ElementsMatch(t, []string{"Back Squat", "Bench Press"}, names)

	thursday, err := reloaded.Rows(3)
	require.NoError(t, err)
	require.NoError(t, reloaded.DeleteRow(ctx, 3, 0))
	assert.Equal(t, 2, reloaded.StoredCount())
	assert.False(t, thursday[0].IsNew())

	require.NoError(t, reloaded.DeletePlan(ctx))
	assert.False(t, reloaded.HasStoredWorkout())

	_, err = client.GetPlan(ctx)
	assert.True(t, sdk.IsNotFound(err))
}

func (s *IntegrationTestSuite) TestProgressAndSuggestions() {
	ctx := context.Background()
	t := s.T()
	client, _ := s.signedUpClient(ctx)

	// previous week 1000, this week 750
	_, err := client.AddExercise(ctx, "2024-05-08", workouts.NewExercise{
		Name: "Deadlift",
		Sets: []workouts.NewSet{{Weight: 100, Reps: 10, RPE: floatPtr(8)}},
	})
	require.NoError(t, err)
	_, err = client.AddExercise(ctx, "2024-05-15", workouts.NewExercise{
		Name: "Deadlift",
		Sets: []workouts.NewSet{{Weight: 150, Reps: 5, RPE: floatPtr(9)}},
	})
	require.NoError(t, err)

	comparisons, err := dashboard.New(client).Load(ctx, time.Date(2024, 5, 16, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, comparisons, 3)
	assert.Equal(t, dashboard.Comparison{Name: dashboard.NameWeeklyVolume, Current: 750, Previous: 1000, Change: -25}, comparisons[0])
	assert.Equal(t, 9.0, comparisons[1].Current)
	assert.Equal(t, 8.0, comparisons[1].Previous)
	assert.Equal(t, dashboard.Comparison{Name: dashboard.NameMonthlySessions, Current: 2, Previous: 0, Change: 100}, comparisons[2])

	names, err := client.SuggestExercises(ctx, "bench", 5)
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "Bench Press", names[0])
	for _, n := range names {
		assert.Contains(t, strings.ToLower(n), "bench")
	}
}

func (s *IntegrationTestSuite) TestRealtimeRowChanges() {
	ctx := context.Background()
	t := s.T()
	client, session := s.signedUpClient(ctx)

	wsURL := url.URL{
		Scheme: "ws",
		Host:   fmt.Sprintf("%s:%d", serverHost, serverPort),
		Path:   "/realtime",
		RawQuery: url.Values{
			"access_token": {session.AccessToken},
			"apikey":       {testAnonKey},
		}.Encode(),
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL.String(), nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	added, err := client.AddExercise(ctx, "2024-06-01", workouts.NewExercise{Name: "Pull Up"})
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg realtime.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, realtime.MessageTypeRowChange, msg.Type)
	assert.Equal(t, "exercises", msg.Table)
	assert.Equal(t, "INSERT", msg.Action)
	assert.Equal(t, added.ID, msg.RowID)

	require.NoError(t, client.Auth().SignOut(ctx))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, realtime.MessageTypeAuth, msg.Type)
	assert.Equal(t, auth.EventSignedOut.String(), msg.Event)
}
