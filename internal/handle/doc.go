/*
Package handle provides the opaque identifiers used to address nodes and
params inside an audio context's connection store.

A handle is an index into the store's arena plus the generation of the slot
it was issued for. Freeing a slot bumps its generation, so a handle kept past
the teardown of its context never resolves to a newer record.
*/
package handle
