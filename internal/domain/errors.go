// SPDX-License-Identifier: Apache-2.0

package domain

import "errors"

var ErrRunInProgress = errors.New("bootstrap run already in progress")
var ErrNoRunYet = errors.New("no bootstrap run has completed yet")
