package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyUnknown = -1

	KeySpace        = 32
	KeyApostrophe   = 39
	KeyComma        = 44
	KeyMinus        = 45
	KeyPeriod       = 46
	KeySlash        = 47
	KeySemicolon    = 59
	KeyEqual        = 61
	KeyLeftBracket  = 91
	KeyBackslash    = 92
	KeyRightBracket = 93
	KeyGraveAccent  = 96

	Key0 = 48
	Key1 = 49
	Key2 = 50
	Key3 = 51
	Key4 = 52
	Key5 = 53
	Key6 = 54
	Key7 = 55
	Key8 = 56
	Key9 = 57

	KeyA = 65
	KeyB = 66
	KeyC = 67
	KeyD = 68
	KeyE = 69
	KeyF = 70
	KeyG = 71
	KeyH = 72
	KeyI = 73
	KeyJ = 74
	KeyK = 75
	KeyL = 76
	KeyM = 77
	KeyN = 78
	KeyO = 79
	KeyP = 80
	KeyQ = 81
	KeyR = 82
	KeyS = 83
	KeyT = 84
	KeyU = 85
	KeyV = 86
	KeyW = 87
	KeyX = 88
	KeyY = 89
	KeyZ = 90
)

// Non-printable keys (GLFW)
const (
	KeyEsc       = 256
	KeyEnter     = 257
	KeyTab       = 258
	KeyBackspace = 259
	KeyInsert    = 260
	KeyDelete    = 261
	KeyRight     = 262
	KeyLeft      = 263
	KeyDown      = 264
	KeyUp        = 265
	KeyPageUp    = 266
	KeyPageDown  = 267
	KeyHome      = 268
	KeyEnd       = 269

	KeyF1  = 290
	KeyF2  = 291
	KeyF3  = 292
	KeyF4  = 293
	KeyF5  = 294
	KeyF6  = 295
	KeyF7  = 296
	KeyF8  = 297
	KeyF9  = 298
	KeyF10 = 299
	KeyF11 = 300
	KeyF12 = 301

	KeyLeftShift    = 340
	KeyLeftControl  = 341
	KeyLeftAlt      = 342
	KeyRightShift   = 344
	KeyRightControl = 345
	KeyRightAlt     = 346
	KeyMenu         = 348

	// KeyLast is the highest key code GLFW reports.
	KeyLast = KeyMenu
)

// Mouse buttons (GLFW)
const (
	MouseButtonLeft   = 0
	MouseButtonRight  = 1
	MouseButtonMiddle = 2

	// MouseButtonLast is the highest mouse button GLFW reports.
	MouseButtonLast = 7
)

// Key and button actions (GLFW)
const (
	ActionRelease = 0
	ActionPress   = 1
	ActionRepeat  = 2
)
