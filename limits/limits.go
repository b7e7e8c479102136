// Limits applied to every statement and to anything rendering rows. The
// commands overwrite these from their cobra/viper flags.
package limits

import "time"

// QueryTimeout bounds a single statement execution. Zero disables it.
var QueryTimeout = 30 * time.Second

// MaxRows caps how many rows list and shell output render. Zero means no
// cap.
var MaxRows = 1000
