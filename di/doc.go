// Package di provides a type-keyed dependency injection engine.
//
// Factories are registered under the type they return. Functions wrapped
// with Resolve declare, through positional markers, which parameters the
// injector fills in. Each marked parameter is resolved by invoking the
// factory registered for its type, recursively resolving that factory's own
// marked parameters first.
//
// # Registration
//
//	inj := di.New()
//	_ = inj.Singleton(NewCat)
//	_ = inj.Transient(NewDog, di.Inject[*Cat]())
//
// # Resolution
//
//	play := inj.MustResolve(func(c *Cat, d *Dog) string {
//	    return c.Name + " and " + d.Name
//	}, di.Inject[*Cat](), di.Inject[*Dog]())
//
//	out, err := play.Call()
//
// # Lifetimes
//
// Transient factories run on every resolution. Singleton factories run once
// per injector and the instance is shared afterwards. Scoped factories run
// once per top-level call (Call, CallContext, Get) and the instance is shared
// by every consumer inside that call.
//
// # Errors
//
// Every error is an *errors.AppError from github.com/kbukum/sdi/errors and
// can be matched with the standard library:
//
//	if stderrors.Is(err, errors.ErrUnregisteredType) { ... }
package di
