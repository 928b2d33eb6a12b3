// Package handle runs a registered worker function in a separate OS process
// and exposes it as a scoped resource: the worker's return value or failure
// is captured and surfaced after the join, a hung child can be forcibly
// terminated with a bounded wait, and a generator-producing worker can be
// conversed with at each of its suspension points through Get, Send and Go.
//
// The child is the parent's own executable re-executed with a marker
// environment variable; worker.Init, called first in main or TestMain,
// dispatches it to the registered function. All coordination is message
// passing over pipes with a single writer and a single reader per direction.
// There is no shared memory and no lock protects cross-process state.
//
// The conversation protocol is strict: a generator with N yield points needs
// exactly N Get calls and N Send/Go calls, and the final resume is mandatory
// even though the worker discards it. Omitting it parks the child on its
// resume read forever, so the subsequent Join only comes back with
// ErrStillRunning once its context expires. The harness performs no runtime
// protocol checking; the hang is the documented behavior. Likewise a Get
// issued after the child was terminated blocks indefinitely.
//
// Process-group termination is only guaranteed on Linux. On other Unix
// platforms the kill reaches the child's process group best effort, and on
// Windows only the direct child; helpers the worker spawned may need
// separate cleanup. The pipe descriptors ride on exec.Cmd.ExtraFiles, which
// Windows does not support, so spawning a handle there fails at Start.
package handle
