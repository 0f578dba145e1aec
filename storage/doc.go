/*
Package storage stores voter ID photos.

BlobStore is implemented by SupabaseStore, which speaks the Supabase Storage
REST API, and LocalStore, which writes into a directory served under
/uploads/. Objects are named by NewObjectName so concurrent uploads of the
same file name never collide, and uploads never overwrite.

Deleting photos is always best-effort for callers: a photo URL is mapped
back to its object with ObjectName, and foreign URLs are left alone.
*/
package storage
