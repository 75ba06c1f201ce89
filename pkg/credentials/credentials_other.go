//go:build !windows

package credentials

// ReadFromStore reports that no credentials store is available on this
// platform; the credentials remain in the configuration file instead.
func (this *Credentials) ReadFromStore() (supported bool, err error) {
	return false, nil
}

func (this *Credentials) WriteToStore() (supported bool, err error) {
	return false, nil
}
