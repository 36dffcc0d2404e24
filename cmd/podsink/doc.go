// Command podsink downloads new videos from configured YouTube channels
// as audio files and files them into a podcast library.
package main
