package tui

const helpText = `How do I use this?

webmgen writes the ffmpeg commands that turn a video into a WebM. It does not
convert anything itself.

  1. Install ffmpeg (with libvpx-vp9 and zscale support).
  2. Open a terminal in the directory of your video.
  3. Drop the video onto this window or type its path and press Enter.
  4. Adjust the settings, press Ctrl+Y and paste the commands into the
     terminal.

Ctrl+S copies a sample that encodes only the first second from the start
point, so you can check the quality before running the full encode.

How do the commands work?

  • They produce VP9 video in a WebM container.
  • Two-pass encoding with a variable bitrate corridor sized to fit the
    maximum file size.
  • -quality good -speed 0 trade time for compression.
  • -tile-columns, -row-mt and -frame-parallel use more cores.
  • Colors are normalized to full-range BT.709.

Leave a field empty to use the value of the source video.`
