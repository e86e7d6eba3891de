/*
Package ports defines the driven ports (interfaces) for the spherecal wizard.

These interfaces decouple the calibration core from external implementations,
allowing the wizard to run against real cameras, windows, and stores as easily
as against headless test doubles.

# Key Interfaces

  - ConfigStore: staged-write-then-flush persistence of calibration artifacts.
  - CameraModel: pixel to view-ray projection fixed by image size and FOV.
  - CircumferenceFitter / PoseFitter: the numerical estimators.
  - FrameSource / InputSource / Renderer / Prompter: the frontend surface.
*/
package ports
