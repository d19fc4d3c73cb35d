// Package access implements the peer-to-peer access request workflow.
//
// A user asks another user for access. The request starts as pending and
// is resolved exactly once, to accept or decline, by the user it was
// addressed to. A request addressed to someone else is reported as not
// found so callers cannot discover other users' requests. Requests are never
// deleted.
package access
