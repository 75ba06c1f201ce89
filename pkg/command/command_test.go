package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blaubaer/voice-navigator/pkg/navigation"
)

var testRoutes = navigation.Routes{
	{Id: "/home", Title: "Home", File: "home.html"},
	{Id: "/housing", Title: "Housing", File: "housing.html"},
	{Id: "/payments", Title: "Payments", File: "payments.html"},
	{Id: "/login", Title: "Login", File: "login.html"},
}

func newTestTable(t *testing.T) Table {
	result := DefaultTable()
	result.Navigation = NavigationFor(testRoutes)
	require.NoError(t, result.Validate(testRoutes))
	return result
}

func TestTable_Resolve_navigation(t *testing.T) {
	instance := newTestTable(t)

	cases := map[string]string{
		"open housing":         "/housing",
		"Go to Housing.":       "/housing",
		"housing":              "/housing",
		"show me the payments": "/payments",
		"take me home please":  "/home",
		"open the login":       "/login",
	}
	for transcript, expected := range cases {
		t.Run(transcript, func(t *testing.T) {
			actual := instance.Resolve(transcript, false)
			assert.Equal(t, KindNavigate, actual.Kind)
			assert.Equal(t, expected, actual.Destination)
		})
	}
}

func TestTable_Resolve_turnOffBeatsNavigation(t *testing.T) {
	instance := newTestTable(t)

	actual := instance.Resolve("stop voice assistant and go to housing", true)

	assert.Equal(t, KindTurnOff, actual.Kind)
	assert.Empty(t, actual.Destination)
}

func TestTable_Resolve_priorities(t *testing.T) {
	instance := newTestTable(t)

	cases := map[string]Kind{
		"next":                 KindNext,
		"skip this":            KindNext,
		"continue":             KindNext,
		"click":                KindActivate,
		"press it":             KindActivate,
		"submit":               KindActivate,
		"sign in":              KindAuthenticate,
		"please sign up":       KindAuthenticate,
		"go back":              KindBack,
		"previous":             KindBack,
		"read page":            KindRestart,
		"read again":           KindRestart,
		"start over":           KindRestart,
		"check":                KindToggle,
		"toggle":               KindToggle,
		"stop":                 KindStop,
		"stop talking":         KindStop,
		"disable voice":        KindTurnOff,
		"turn off voice":       KindTurnOff,
		"next and click":       KindNext,
		"stop voice":           KindUnknown,
		"what is the weather":  KindUnknown,
		"":                     KindUnknown,
		"   ":                  KindUnknown,
		"click to go back":     KindActivate,
		"go to housing, click": KindNavigate,
	}
	for transcript, expected := range cases {
		t.Run(transcript, func(t *testing.T) {
			assert.Equal(t, expected, instance.Resolve(transcript, false).Kind)
		})
	}
}

func TestTable_Resolve_freeText(t *testing.T) {
	instance := newTestTable(t)

	actual := instance.Resolve("  42 Example Street ", true)
	assert.Equal(t, KindFreeText, actual.Kind)
	assert.Equal(t, "42 Example Street", actual.Raw)

	assert.Equal(t, KindUnknown, instance.Resolve("42 Example Street", false).Kind)
	assert.Equal(t, KindNext, instance.Resolve("next", true).Kind)
}

func TestNavigationFor_longestFirst(t *testing.T) {
	actual := NavigationFor(navigation.Routes{
		{Id: "housing", Title: "Housing", File: "housing.html"},
		{Id: "/none", File: "none.html"},
	})

	require.Len(t, actual, 4)
	assert.Equal(t, Entry{Phrase: "go to housing", Destination: "/housing"}, actual[0])
	assert.Equal(t, Entry{Phrase: "housing", Destination: "/housing"}, actual[3])
	for i := 1; i < len(actual); i++ {
		assert.GreaterOrEqual(t, len(actual[i-1].Phrase), len(actual[i].Phrase))
	}
}

func TestTable_Validate(t *testing.T) {
	instance := DefaultTable()

	instance.Navigation = Entries{{Phrase: "sign in now", Destination: "/login"}}
	assert.ErrorContains(t, instance.Validate(testRoutes), "shadow")

	instance.Navigation = Entries{{Phrase: "elsewhere", Destination: "/unknown"}}
	assert.ErrorIs(t, instance.Validate(testRoutes), navigation.ErrUnknownDestination)

	instance.Navigation = Entries{{Phrase: "Housing", Destination: "/housing"}}
	assert.ErrorContains(t, instance.Validate(testRoutes), "not normalized")
}

func TestTable_Merge(t *testing.T) {
	actual := Table{Next: []string{"weiter"}}.Merge(DefaultTable())

	assert.Equal(t, []string{"weiter"}, actual.Next)
	assert.Equal(t, DefaultTable().Back, actual.Back)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "open housing", Normalize("  Open   HOUSING!? "))
	assert.Equal(t, "", Normalize(" . "))
}
