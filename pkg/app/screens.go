package app

import (
	"embed"
	"fmt"
	"io/fs"
	"os"

	"github.com/blaubaer/voice-navigator/pkg/navigation"
)

//go:embed screens/*.html
var demoScreens embed.FS

func demoRoutes() navigation.Routes {
	return navigation.Routes{
		{Id: "/home", Title: "Home", File: "home.html"},
		{Id: "/housing", Title: "Housing", File: "housing.html"},
		{Id: "/payments", Title: "Payments", File: "payments.html"},
		{Id: "/bookings", Title: "Bookings", File: "bookings.html"},
		{Id: "/profile", Title: "Profile", File: "profile.html"},
		{Id: "/login", Title: "Login", File: "login.html"},
	}
}

func (this ScreensConfiguration) open() (fs.FS, error) {
	if this.Directory == "" {
		return fs.Sub(demoScreens, "screens")
	}
	if fi, err := os.Stat(this.Directory); err != nil {
		return nil, fmt.Errorf("cannot open screens directory %q: %w", this.Directory, err)
	} else if !fi.IsDir() {
		return nil, fmt.Errorf("screens directory %q is not a directory", this.Directory)
	}
	return os.DirFS(this.Directory), nil
}
