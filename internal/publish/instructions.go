package publish

import (
	"fmt"
	"io"
)

// Instructions prints the manual steps for publishing the generated
// calendar file and subscribing to it from Google Calendar.
func Instructions(w io.Writer, filename string) {
	fmt.Fprintln(w, "\n--- Publishing the calendar ---")
	fmt.Fprintf(w, "1. Commit and push the updated '%s' to your GitHub repository.\n", filename)
	fmt.Fprintln(w, "   The repository must be public, or you need a permanent raw link to the file.")
	fmt.Fprintf(w, "2. Open '%s' on GitHub and click the [Raw] button.\n", filename)
	fmt.Fprintln(w, "3. Copy the URL from the address bar. It looks like:")
	fmt.Fprintf(w, "   https://raw.githubusercontent.com/YOUR_USERNAME/YOUR_REPOSITORY/main/%s\n", filename)
	fmt.Fprintln(w, "4. First time only: in Google Calendar (calendar.google.com),")
	fmt.Fprintln(w, "   a. find \"Other calendars\" in the left panel and click the plus (+),")
	fmt.Fprintln(w, "   b. choose \"From URL\",")
	fmt.Fprintln(w, "   c. paste the raw URL from step 3,")
	fmt.Fprintln(w, "   d. click \"Add calendar\".")
	fmt.Fprintln(w, "5. Already subscribed: Google Calendar refreshes the URL periodically")
	fmt.Fprintln(w, "   (roughly once a day); just keep the file on GitHub up to date.")
}
