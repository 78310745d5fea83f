/*

Process of compilation

Program Text ->
	tokenize ->
Token Sequence ->
	parse ->
Abstract Syntax Tree (ast) ->
	fold (optional) ->
Abstract Syntax Tree (ast) ->
	analyze ->
Symbol Table + Warnings

Abstract Syntax Tree (ast) ->
	generate ->
Three-Address Code (ir) ->
	back ->
Assembly Text ->
	assemble + link ->
Machine Program ->
	vm ->
Outputs

*/
package compiler
