// Package instrument rewrites the methods of contract-bearing classes so
// that their preconditions, postconditions and class invariants are checked
// on every call.
//
// The pass never mutates the program it is given. It builds a new
// ir.Program in which classes and methods are shallow copies, and only the
// bodies of instrumented methods are replaced. An instrumented method has
// the shape:
//
//	[super(...) / this(...)]
//	check requires
//	T $returns;
//	Exception $raises = null;
//	old.enter; [old.capture]
//	try {
//	    try { body } catch (Exception $e) { $raises = $e; throw $e; }
//	} finally {
//	    try { check ensures; check invariants } finally { old.leave }
//	}
//
// Every return of the method's own frame is turned into
// `{ $returns = e; return $returns; }`. Lambda bodies are expressions and
// keep their own returns.
package instrument
