// Package world loads TOML world files: declarations, resolution contexts
// and call sites to run through the tower.
//
// A world file looks like this:
//
//	package = "app"
//	literal_class = "Int"
//
//	[[class]]
//	name = "A"
//
//	[[fun]]
//	name = "f"
//	receiver = "A"
//	params = ["x: Int", "vararg rest: Int = _"]
//
//	[[local]]
//	name = "body"
//
//	[[context]]
//	name = "main"
//	locals = ["body"]
//	imports = ["app", "lib.*"]
//	receivers = [{ extension = "A", label = "f" }]
//
//	[[call]]
//	id = "c1"
//	context = "main"
//	name = "f"
//	args = ["literal"]
//	expect = "app.f"
//	group = "Implicit(0).Top(0)"
//
// Declarations live in the default package unless they name a package,
// a class or a local scope. Contexts list local scopes and implicit
// receivers innermost first and imports in priority order.
package world
