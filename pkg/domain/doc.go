/*
Package domain contains the core domain models for the spherecal wizard.

It defines the fundamental entities of the calibration state machine, such as
Stages, the Session, artifact keys, and the input/display shapes exchanged with
frontends. This package is kept pure and free of external dependencies like I/O
or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Stage: one state of the wizard; Exit and Failed are terminal.
  - Session: the mutable per-run state (collections, fit, transform).
  - Method: the corner convention tag behind the camera-to-subject transform.
  - InputEvent: a discrete operator action delivered by a frontend.
  - DisplayModel: what a frontend draws for one wizard cycle.
*/
package domain
