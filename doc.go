// Package zcat reads the lines of a file whatever its compression.
//
// Open returns a Stream whose lines are read with NextLine. The first read
// inspects the leading bytes of the file to recognize gzip, bzip2, xz, lzma,
// zstd or lz4 compressed data, then decodes the file on the fly. Files in any
// other format are read as is.
//
//  s, err := zcat.Open("access.log.zst")
//  if err != nil {
//      return err
//  }
//  defer s.Close()
//
//  for {
//      line, err := s.NextLine()
//      if err == io.EOF {
//          break
//      }
//      if err != nil {
//          return err
//      }
//      fmt.Println(line)
//  }
//
// A corrupted or truncated compressed file never ends with io.EOF: the read
// that hits the fault returns a *DecodeError instead.
package zcat
