// Package definition loads tour definitions from YAML files and turns them
// into sequencer steps.
//
// A definition file lists tours and their steps. Step hooks are written as
// action references resolved through [Actions]:
//
//	tours:
//	  - id: welcome
//	    steps:
//	      - title: Sessions
//	        body: Your sessions live here.
//	        target: sidebar
//	        before: ["delay:300ms"]
//	        after: ["log"]
//	      - title: Skip
//	        body: Reopen this tour any time.
//	        fallback: true
//
// [LoadDir] builds a [Catalog] from a directory; [Catalog.Build] produces the
// []tour.Step for one tour. [Watcher] reloads the catalog when files change.
package definition
