// Package logx configures studyplan's structured logging.
//
// This repo uses a small wrapper (logx.Logger) on top of zerolog to keep:
//   - Console output readable (short timestamp + short caller) on stderr,
//     so command output on stdout stays machine readable
//   - File output JSON-structured
package logx
