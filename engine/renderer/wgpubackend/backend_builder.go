package wgpubackend

// BackendBuilderOption is a functional option applied to the wgpu backend during construction via New.
type BackendBuilderOption func(*backend)

// WithForceFallbackAdapter requests the software fallback adapter instead of a hardware GPU.
//
// Parameters:
//   - force: true to force the fallback adapter
//
// Returns:
//   - BackendBuilderOption: a function that applies the adapter option to the backend
func WithForceFallbackAdapter(force bool) BackendBuilderOption {
	return func(b *backend) {
		b.forceFallbackAdapter = force
	}
}

// WithDeviceLabel sets the debug label of the logical device.
func WithDeviceLabel(label string) BackendBuilderOption {
	return func(b *backend) {
		b.deviceLabel = label
	}
}
