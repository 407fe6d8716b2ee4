package main

// Session configuration constants
const (
	SessionCookieName = "session_id"
	DefaultPuzzleFile = "data/puzzle.yaml"
	DefaultStorePath  = "data/sessions"
)

// Route constants
const (
	RouteHome       = "/"
	RouteBoard      = "/board"
	RouteSelectClue = "/select/:clueID"
	RoutePrevClue   = "/clue/prev"
	RouteNextClue   = "/clue/next"
	RouteCell       = "/cell/:row/:col"
	RoutePickCell   = "/cell/:row/:col/pick"
	RouteBackspace  = "/cell/:row/:col/backspace"
	RouteMove       = "/move/:dir"
	RouteDirection  = "/direction/toggle"
	RouteTrack      = "/track/:trackID"
	RoutePlay       = "/play"
	RoutePlayback   = "/playback"
	RouteReset      = "/reset"
	RouteSubmission = "/submission"
	RouteMailto     = "/submission/mailto"
	RouteLayout     = "/api/layout"
	RouteHealthz    = "/healthz"
)

// Error message constants
const (
	ErrorUnknownClue  = "Okänd ledtråd."
	ErrorUnknownTrack = "Okänt spår."
	ErrorBadCell      = "Ogiltig ruta."
	ErrorBadMove      = "Ogiltig riktning."
	ErrorNoPuzzle     = "Krysset kunde inte laddas."
)

// Context key constants
type contextKey string

const (
	requestIDKey contextKey = "request_id"
)
