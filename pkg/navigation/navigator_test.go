package navigation

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNavigator(t testing.TB) *Navigator {
	t.Helper()
	screens := fstest.MapFS{
		"home.html":    {Data: []byte(`<title>Home</title><h1>Welcome</h1>`)},
		"housing.html": {Data: []byte(`<h1>Housing</h1>`)},
		"broken.html":  {Data: []byte(`<h1>Broken</h1>`)},
	}
	instance, err := NewNavigator(screens, Routes{
		{Id: "/", Title: "Home", File: "home.html"},
		{Id: "/housing", Title: "Housing", File: "housing.html"},
		{Id: "/missing", File: "missing.html"},
	})
	require.NoError(t, err)
	return instance
}

func TestNavigator_NavigateAndBack(t *testing.T) {
	instance := newTestNavigator(t)

	var changes []string
	instance.OnChange(func(d Destination) {
		changes = append(changes, d.Route.Id+"="+d.Document.Title)
	})

	require.NoError(t, instance.Navigate("/"))
	assert.False(t, instance.CanGoBack())

	require.NoError(t, instance.Navigate("housing"))
	assert.True(t, instance.CanGoBack())
	assert.Equal(t, "/housing", instance.Current().Route.Id)

	require.NoError(t, instance.Back())
	assert.Equal(t, "/", instance.Current().Route.Id)
	assert.ErrorIs(t, instance.Back(), ErrNoHistory)

	assert.Equal(t, []string{"/=Home", "/housing=Housing", "/=Home"}, changes)
}

func TestNavigator_Navigate_failures(t *testing.T) {
	instance := newTestNavigator(t)

	assert.ErrorIs(t, instance.Navigate("/unknown"), ErrUnknownDestination)
	assert.ErrorContains(t, instance.Navigate("/missing"), `cannot open screen "missing.html"`)
	assert.True(t, instance.Current().IsZero())
}

func TestNavigator_Reload(t *testing.T) {
	instance := newTestNavigator(t)
	assert.ErrorIs(t, instance.Reload(), ErrUnknownDestination)

	require.NoError(t, instance.Navigate("/housing"))
	first := instance.Current().Document

	require.NoError(t, instance.Reload())
	assert.NotSame(t, first, instance.Current().Document)
	assert.False(t, instance.CanGoBack())
}

func TestRoutes_Validate(t *testing.T) {
	assert.NoError(t, Routes{{Id: "/", File: "a"}, {Id: "/b", File: "b"}}.Validate())
	assert.EqualError(t, Routes{{Id: "/a", File: "a"}, {Id: "a/", File: "b"}}.Validate(), `duplicate route "a/"`)
	assert.EqualError(t, Routes{{Id: "/a"}}.Validate(), `route "/a" has no file`)
}

func TestNormalizeId(t *testing.T) {
	assert.Equal(t, "/housing", NormalizeId(" Housing/ "))
	assert.Equal(t, "/", NormalizeId(""))
}
