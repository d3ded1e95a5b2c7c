// Package terminal adapts a tcell screen into the cell canvas the wind map draws on
//
// Features:
//   - True color (24-bit) and 256-color palette output
//   - Resize, mouse motion and focus events translated to a small Event type
//   - Clean terminal restoration on exit/panic
package terminal
