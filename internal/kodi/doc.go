// Package kodi emits the translation script for a Jellyfin-for-Kodi
// companion database, whose stored URLs embed server item identifiers.
package kodi
