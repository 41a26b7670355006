// This file is part of Gopherzx.
//
// Gopherzx is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gopherzx is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gopherzx.  If not, see <https://www.gnu.org/licenses/>.

// Package curated provides the error type used throughout the project. A
// curated error is created with Errorf() in the same way fmt.Errorf would be
// used, except that the format string is retained and acts as the error's
// identity. Identity can be tested with Is() and Has() without the need for
// sentinel error values.
package curated
