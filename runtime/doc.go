// Package runtime provides the instance that translated programs run
// against.
//
// # Quick Start
//
//	inst, err := runtime.New(&runtime.Config{
//	    Globals:   1,
//	    TableSize: 8,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer inst.Close(ctx)
//
//	err = inst.Export("main", &dispatch.Target{
//	    Name: "main",
//	    Sig:  dispatch.Sig().Returning(value.TypeI32),
//	    Fn:   mainFunc,
//	})
//
//	results, err := inst.Invoke(ctx, "main")
//	if code, exited := runtime.ExitCode(err); exited {
//	    os.Exit(int(code))
//	}
//
// # Instance
//
// An Instance bundles everything a program touches: the segment store and
// the checked memory over it, the globals (initialized to the null handle),
// the indirect call table, named exports and optionally a WASI host. It is
// passed explicitly; there is no package-level program state.
//
// # Traps
//
// Any failing operation inside an exported function aborts the call. Invoke
// wraps the failure in a *Trap naming the export. A proc_exit from the host
// travels the same way and is recovered with ExitCode.
//
// # Logging
//
// Segment allocation and free are logged at debug level, traps at warn,
// through the logger set with SetLogger or Config.Logger.
package runtime
