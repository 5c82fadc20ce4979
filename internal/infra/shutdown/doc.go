// Package shutdown runs cleanup hooks when a long-running command ends,
// either because the user interrupted it (SIGINT, SIGTERM) or because it
// finished on its own.
//
//	h := shutdown.NewHandler(5 * time.Second)
//	h.OnShutdown(server.Shutdown)
//	go h.Wait(ctx) // runs hooks on a signal or when ctx ends
//	<-h.Done()
package shutdown
