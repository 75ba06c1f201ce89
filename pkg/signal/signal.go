package signal

// Signal reflects the status of the voice assistant somewhere outside of
// this process: a light, a smart home entity or a tray icon.
type Signal interface {
	// Ensure brings the signal into the state of the given Context. It is
	// called on every change and periodically afterward, so it has to be
	// cheap if nothing changed.
	Ensure(Context) error

	// Update refreshes whatever the signal discovered about its targets.
	Update() error

	Dispose() error

	GetType() Type
}
