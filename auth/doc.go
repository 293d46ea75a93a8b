/*
Package auth is for authentication and authorization. It contains database interfaces (DBGroup, DBUser), the AuthDB glue between them and the evaluation of access control lists.

Principals

A user holds a set of principals:

  system.Everyone       everybody, including the public
  system.Authenticated  every logged in user
  user:<id>             the user itself
  group:<name>          each group the user is a member of

Access Control Lists

An ACL is an ordered list of entries (effect, principal, actions), usually resolved from the workflow state of an object.
Permits walks the list and the first entry which matches both a principal of the user and the requested action decides.
If no entry matches, access is denied.
*/
package auth
