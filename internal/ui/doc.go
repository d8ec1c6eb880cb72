// Package ui contains the Bubble Tea program that powers the QMF explorer.
// The Model type focuses on message orchestration while dedicated helpers own
// navigation, input, rendering and worker traffic.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages.
//   - Key presses go to the open dialog first (connect or agent filter). When
//     no dialog is open the message is routed through a typed handler registry
//     so each tea.Msg is handled by a focused function.
//   - Navigation helpers (internal/ui/navigation.go) switch between the
//     Agents, Objects and Events tabs, move the cursor and fill the detail
//     table. Filter helpers (internal/ui/input.go) keep text entry out of the
//     main event loop.
//
// State ownership:
//   - Each tab's browsing state lives in internal/ui/state.Level, which tracks
//     rows, filtering and viewport calculations.
//   - Agent, object and event rows live in the internal/state stores. Only the
//     dispatcher writes to them, and only on the UI goroutine. Store observers
//     mark tabs for refresh.
//   - User intents become backend.Command values handed to the session worker
//     through the internal/ui/command bus. Queueing never blocks.
//
// Worker interactions:
//   - The session worker publishes backend.Notification values on a channel.
//     waitForNotification turns each one into a notificationMsg; the handler
//     applies it through the dispatcher and schedules the next wait.
//   - When the channel closes the model stops waiting.
package ui
