// Package connectify implements the identity and engagement backend for a
// social audio service: account signup, email verification, session
// management, and the like/follow graph, plus track and playlist storage.
//
// Account lifecycle:
//   - Users carry an AccountStatus persisted via Bun. Accounts start pending,
//     become verified through a single-use emailed code, and can be disabled
//     and reinstated by operators. Verified is terminal: a disabled account
//     re-enters through pending and verifies again.
//   - AccountStateMachine centralizes the transition graph, hooks, and
//     persistence. Command handlers consult it before consuming verification
//     tokens so the graph stays authoritative.
//
// Sessions:
//   - TokenService signs and validates stateless JWT credentials. The
//     RouteAuthenticator moves them over an HTTP-only cookie with a bearer
//     header fallback, and the sessionware middleware resolves them per
//     request. Logout clears the cookie; issued tokens stay valid until they
//     expire.
//
// Engagement:
//   - Likes and follows are idempotent toggles: the same command flips the
//     edge on and off, and concurrent duplicates collapse into a single edge.
//     Feed, profile, and search queries annotate results with the viewer's
//     engagement state.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by command handlers
//     and the state machine for lifecycle, login, password reset, and toggle
//     events. Sinks run best-effort so hosts can forward to a database or
//     queue without blocking the request path.
package connectify
